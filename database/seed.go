package database

import (
	"context"
	"fmt"

	"jmb-server/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type seedProduct struct {
	Name, Description, Price, Image, Category string
}

type seedJob struct {
	Title, Location, Image string
}

var demoProducts = []seedProduct{
	{"550W Mono Solar Panel", "High-efficiency monocrystalline solar panel for residential and commercial use.", "2899.99", "https://images.unsplash.com/photo-1509391366360-2e959784a276?w=400&h=300&fit=crop", "Solar"},
	{"5kW Hybrid Inverter", "Hybrid solar inverter with battery backup support and WiFi monitoring.", "18999.99", "https://images.unsplash.com/photo-1593941707882-a5bba14938c7?w=400&h=300&fit=crop", "Solar"},
	{"10kWh Lithium Battery", "Long-lasting lithium-ion battery for solar energy storage.", "45999.99", "https://images.unsplash.com/photo-1620714223084-8fcacc6dfd8d?w=400&h=300&fit=crop", "Solar"},
	{"Solar Panel Mounting Kit", "Complete roof mounting system for 4-6 solar panels with all hardware.", "1499.99", "https://images.unsplash.com/photo-1558449028-b53a39d100fc?w=400&h=300&fit=crop", "Solar"},
	{"3kW Inverter", "Pure sine wave inverter ideal for small homes and backup power.", "8999.99", "https://images.unsplash.com/photo-1597079910443-60c43fc25754?w=400&h=300&fit=crop", "Solar"},
	{"Solar Cable Kit (50m)", "UV-resistant solar cables with MC4 connectors for panel connections.", "899.99", "https://images.unsplash.com/photo-1586864387967-d02ef85d93e8?w=400&h=300&fit=crop", "Wiring"},
	{"400W Poly Solar Panel", "Affordable polycrystalline panel perfect for budget installations.", "1899.99", "https://images.unsplash.com/photo-1508514177221-188b1cf16e9d?w=400&h=300&fit=crop", "Solar"},
	{"Solar Charge Controller 60A", "MPPT charge controller for efficient battery charging.", "2499.99", "https://images.unsplash.com/photo-1581092160562-40aa08e78837?w=400&h=300&fit=crop", "Solar"},
}

var demoJobs = []seedJob{
	{"Solar Installation - Residential", "Johannesburg, Gauteng", "https://images.unsplash.com/photo-1509391366360-2e959784a276?w=800&h=600&fit=crop"},
	{"Commercial Solar System", "Pretoria, Gauteng", "https://images.unsplash.com/photo-1508514177221-188b1cf16e9d?w=800&h=600&fit=crop"},
	{"Inverter & Battery Setup", "Centurion, Gauteng", "https://images.unsplash.com/photo-1593941707882-a5bba14938c7?w=800&h=600&fit=crop"},
	{"Rooftop Solar Panels", "Sandton, Gauteng", "https://images.unsplash.com/photo-1558449028-b53a39d100fc?w=800&h=600&fit=crop"},
	{"Energy Storage System", "Midrand, Gauteng", "https://images.unsplash.com/photo-1620714223084-8fcacc6dfd8d?w=800&h=600&fit=crop"},
	{"Complete Solar Solution", "Soweto, Gauteng", "https://images.unsplash.com/photo-1581092160562-40aa08e78837?w=800&h=600&fit=crop"},
	{"Off-Grid Installation", "Kempton Park, Gauteng", "https://images.unsplash.com/photo-1597079910443-60c43fc25754?w=800&h=600&fit=crop"},
	{"Electrical Wiring Upgrade", "Randburg, Gauteng", "https://images.unsplash.com/photo-1586864387967-d02ef85d93e8?w=800&h=600&fit=crop"},
}

// SeedDemoData fills an empty catalog and gallery with the launch content of
// the site. Tables that already hold rows are left alone.
func (db *DB) SeedDemoData(ctx context.Context) error {
	products, err := db.Count(ctx, "products", "")
	if err != nil {
		return err
	}
	if products == 0 {
		for _, sp := range demoProducts {
			category := sp.Category
			p := &models.Product{
				Name:        sp.Name,
				Description: sp.Description,
				Price:       decimal.RequireFromString(sp.Price),
				Image:       sp.Image,
				Category:    &category,
				IsActive:    true,
			}
			if err := db.CreateProduct(ctx, p); err != nil {
				return fmt.Errorf("failed to seed product %q: %w", sp.Name, err)
			}
		}
		db.logger.Info("Seeded products", zap.Int("count", len(demoProducts)))
	}

	jobs, err := db.Count(ctx, "completed_jobs", "")
	if err != nil {
		return err
	}
	if jobs == 0 {
		for _, sj := range demoJobs {
			j := &models.CompletedJob{Title: sj.Title, Location: sj.Location, Image: sj.Image, IsActive: true}
			if err := db.CreateCompletedJob(ctx, j); err != nil {
				return fmt.Errorf("failed to seed completed job %q: %w", sj.Title, err)
			}
		}
		db.logger.Info("Seeded completed jobs", zap.Int("count", len(demoJobs)))
	}

	return nil
}
