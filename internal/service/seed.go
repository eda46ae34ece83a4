package service

import "github.com/fjod/storefront/internal/domain"

func demoProducts() []domain.Product {
	return []domain.Product{
		{
			Title:       "Classic Tee",
			Description: "Soft cotton unisex t-shirt",
			Price:       19.99,
			Category:    "Apparel",
			Image:       "https://images.unsplash.com/photo-1520975916090-3105956dac38?q=80&w=800&auto=format&fit=crop",
			InStock:     true,
			Rating:      4.6,
		},
		{
			Title:       "Minimal Backpack",
			Description: "Lightweight everyday backpack",
			Price:       49.0,
			Category:    "Bags",
			Image:       "https://images.unsplash.com/photo-1519681393784-d120267933ba?q=80&w=800&auto=format&fit=crop",
			InStock:     true,
			Rating:      4.4,
		},
		{
			Title:       "Wireless Earbuds",
			Description: "Noise-isolating Bluetooth earbuds",
			Price:       59.99,
			Category:    "Electronics",
			Image:       "https://images.unsplash.com/photo-1518448059646-51f7ebf92613?q=80&w=800&auto=format&fit=crop",
			InStock:     true,
			Rating:      4.2,
		},
		{
			Title:       "Ceramic Mug",
			Description: "12oz matte finish mug",
			Price:       12.5,
			Category:    "Home",
			Image:       "https://images.unsplash.com/photo-1525385133512-2f3bdd039054?q=80&w=800&auto=format&fit=crop",
			InStock:     true,
			Rating:      4.8,
		},
	}
}
