// Package marketplace holds the catalog types the dashboards render and the
// seeded demo data used until live listings land.
package marketplace

// Listing is a produce lot a farmer has put on the market
type Listing struct {
	ID               int    `json:"id"`
	Crop             string `json:"crop"`
	Quantity         string `json:"quantity"`
	Quality          string `json:"quality"`
	Price            string `json:"price"`
	Location         string `json:"location"`
	Status           string `json:"status"`
	InterestedBuyers int    `json:"interested_buyers"`
}

// Produce is a listing as the buyer side sees it, enriched with the selling
// farmer's public details.
type Produce struct {
	ID          int     `json:"id"`
	Farmer      string  `json:"farmer"`
	Phone       string  `json:"phone"`
	Crop        string  `json:"crop"`
	Quantity    string  `json:"quantity"`
	Quality     string  `json:"quality"`
	Price       string  `json:"price"`
	Location    string  `json:"location"`
	Distance    string  `json:"distance"`
	Rating      float64 `json:"rating"`
	Verified    bool    `json:"verified"`
	HarvestDate string  `json:"harvest_date"`
	Description string  `json:"description"`
}

// Order is a buyer's purchase record
type Order struct {
	ID       string `json:"id"`
	Farmer   string `json:"farmer"`
	Crop     string `json:"crop"`
	Quantity string `json:"quantity"`
	Amount   string `json:"amount"`
	Status   string `json:"status"`
	Date     string `json:"date"`
}

// PriceAlert tracks a crop against a farmer's target price in a given market
type PriceAlert struct {
	Crop    string `json:"crop"`
	Target  string `json:"target"`
	Current string `json:"current"`
	Market  string `json:"market"`
}

// Stat is a single headline figure for the landing page
type Stat struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// MarketPrice is a live-ish wholesale price row
type MarketPrice struct {
	Crop   string `json:"crop"`
	Price  string `json:"price"`
	Market string `json:"market"`
	Trend  string `json:"trend"`
}

const (
	// FarmerInsight is the tip shown on the farmer dashboard sidebar
	FarmerInsight = "Maize prices are expected to increase by 8% next week due to increased demand from millers. Consider holding your stock if possible!"
	// BuyerInsight is the market note shown on the buyer dashboard sidebar
	BuyerInsight = "Tomato prices have dropped 15% this week due to increased supply from Kajiado farms. Great time to stock up!"
)

// KenyanCounties lists the counties offered on the registration form
func KenyanCounties() []string {
	return []string{
		"Nairobi", "Mombasa", "Kisumu", "Nakuru", "Eldoret", "Kiambu", "Kajiado",
		"Machakos", "Meru", "Nyeri", "Embu", "Kirinyaga", "Murang'a", "Kitui",
	}
}

// FarmerTypes lists the crop categories a farmer can register under
func FarmerTypes() []string {
	return []string{
		"Cereals (Maize, Wheat, Rice)",
		"Vegetables (Tomatoes, Kales, Carrots)",
		"Fruits (Bananas, Mangoes, Avocados)",
		"Cash Crops (Tea, Coffee)",
		"Mixed Farming",
	}
}

// BusinessTypes lists the buyer business categories
func BusinessTypes() []string {
	return []string{
		"Retailer",
		"Wholesaler",
		"Food Processor",
		"Exporter",
		"Restaurant/Hotel",
		"Individual Consumer",
	}
}

// SampleStats returns the landing page headline figures
func SampleStats() []Stat {
	return []Stat{
		{Value: "500+", Label: "Active Farmers"},
		{Value: "KES 2.5M", Label: "Transactions Monthly"},
		{Value: "15%", Label: "Average Price Increase"},
	}
}

// SampleMarketPrices returns the landing page wholesale price board
func SampleMarketPrices() []MarketPrice {
	return []MarketPrice{
		{Crop: "Maize", Price: "KES 4,200/bag", Market: "Nairobi", Trend: "up"},
		{Crop: "Tomatoes", Price: "KES 95/kg", Market: "Mombasa", Trend: "down"},
		{Crop: "French Beans", Price: "KES 180/kg", Market: "Kiambu", Trend: "up"},
	}
}

// SampleInventory returns the farmer dashboard's seeded inventory
func SampleInventory() []Listing {
	return []Listing{
		{
			ID:               1,
			Crop:             "Maize",
			Quantity:         "50 bags (90kg each)",
			Quality:          "Grade 1",
			Price:            "KES 4,500/bag",
			Location:         "Nakuru County",
			Status:           "Available",
			InterestedBuyers: 3,
		},
		{
			ID:               2,
			Crop:             "French Beans",
			Quantity:         "200 kg",
			Quality:          "Export Grade",
			Price:            "KES 180/kg",
			Location:         "Kiambu County",
			Status:           "Reserved",
			InterestedBuyers: 1,
		},
	}
}

// SamplePriceAlerts returns the farmer dashboard's seeded alerts
func SamplePriceAlerts() []PriceAlert {
	return []PriceAlert{
		{Crop: "Maize", Target: "KES 5,000/bag", Current: "KES 4,200/bag", Market: "Nairobi"},
		{Crop: "Tomatoes", Target: "KES 120/kg", Current: "KES 95/kg", Market: "Mombasa"},
	}
}

// SampleProduce returns the buyer dashboard's seeded listings
func SampleProduce() []Produce {
	return []Produce{
		{
			ID:          1,
			Farmer:      "John Mwangi",
			Phone:       "+254 712 345 678",
			Crop:        "Maize",
			Quantity:    "50 bags (90kg)",
			Quality:     "Grade 1",
			Price:       "KES 4,500/bag",
			Location:    "Nakuru County",
			Distance:    "25 km",
			Rating:      4.8,
			Verified:    true,
			HarvestDate: "2024-01-15",
			Description: "High-quality yellow maize, properly dried and stored. Available for immediate pickup.",
		},
		{
			ID:          2,
			Farmer:      "Mary Wanjiku",
			Phone:       "+254 721 987 654",
			Crop:        "French Beans",
			Quantity:    "200 kg",
			Quality:     "Export Grade",
			Price:       "KES 180/kg",
			Location:    "Kiambu County",
			Distance:    "15 km",
			Rating:      4.9,
			Verified:    true,
			HarvestDate: "2024-01-20",
			Description: "Fresh export-quality French beans. Organic certified, perfect for export market.",
		},
		{
			ID:          3,
			Farmer:      "Peter Kimani",
			Phone:       "+254 733 456 789",
			Crop:        "Tomatoes",
			Quantity:    "300 kg",
			Quality:     "Grade 1",
			Price:       "KES 95/kg",
			Location:    "Kajiado County",
			Distance:    "45 km",
			Rating:      4.6,
			Verified:    true,
			HarvestDate: "2024-01-22",
			Description: "Fresh tomatoes, perfect for retail. Well-sorted and packaged in crates.",
		},
	}
}

// SampleOrders returns the buyer dashboard's seeded order history
func SampleOrders() []Order {
	return []Order{
		{
			ID:       "ORD-001",
			Farmer:   "Sarah Muthoni",
			Crop:     "Carrots",
			Quantity: "150 kg",
			Amount:   "KES 12,000",
			Status:   "Delivered",
			Date:     "2024-01-18",
		},
		{
			ID:       "ORD-002",
			Farmer:   "James Ochieng",
			Crop:     "Spinach",
			Quantity: "80 kg",
			Amount:   "KES 4,800",
			Status:   "In Transit",
			Date:     "2024-01-20",
		},
	}
}
