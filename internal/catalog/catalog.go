// Package catalog holds the static car and fuel-cost content of the landing page.
package catalog

// CarModel is one card in the catalog section.
type CarModel struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Year     string   `json:"year"`
	Price    string   `json:"price"`
	Image    string   `json:"image"`
	Specs    []string `json:"specs"`
	Power    string   `json:"power"`
	Fuel     string   `json:"fuel"`
}

// FuelCost is the monthly running cost of one fuel type, in roubles.
type FuelCost struct {
	Name  string `json:"name"`
	Cost  int    `json:"cost"`
	Color string `json:"color"`
}

// Bar is a FuelCost scaled for the benefits chart.
type Bar struct {
	FuelCost
	// Percent is the bar length relative to the most expensive fuel.
	Percent int `json:"percent"`
	// Saving is how much cheaper this fuel is than the most expensive one.
	Saving int `json:"saving"`
}

// Models returns the catalog cards.
func Models() []CarModel {
	return []CarModel{
		{
			ID:       "sonata-dn8",
			Name:     "Hyundai Sonata DN8",
			Category: "Комфорт+",
			Year:     "2019-2022",
			Price:    "от 2.1 млн ₽",
			Image:    "https://s.auto.drom.ru/i24274/c/photos/fullsize/hyundai/sonata/hyundai_sonata_1096478.jpg",
			Specs:    []string{"2.0 LPI (146 л.с.)", "АКПП 6-ст", "Smart Sense"},
			Power:    "146 л.с.",
			Fuel:     "LPI Gas",
		},
		{
			ID:       "k5-dl3",
			Name:     "Kia K5 DL3",
			Category: "Комфорт+",
			Year:     "2020-2023",
			Price:    "от 2.35 млн ₽",
			Image:    "https://s.auto.drom.ru/i24248/c/photos/fullsize/kia/k5/kia_k5_965421.jpg",
			Specs:    []string{"2.0 LPI (150 л.с.)", "LED Matrix", "Digital Cockpit"},
			Power:    "150 л.с.",
			Fuel:     "LPI Gas",
		},
	}
}

// FuelCosts returns the monthly cost series shown in the benefits chart.
func FuelCosts() []FuelCost {
	return []FuelCost{
		{Name: "Бензин", Cost: 55000, Color: "#64748b"},
		{Name: "Электро", Cost: 28000, Color: "#06b6d4"},
		{Name: "LPI Газ", Cost: 21000, Color: "#ff6b35"},
	}
}

// Chart scales costs against the largest one.
func Chart(costs []FuelCost) []Bar {
	peak := 0
	for _, c := range costs {
		if c.Cost > peak {
			peak = c.Cost
		}
	}
	bars := make([]Bar, 0, len(costs))
	for _, c := range costs {
		bar := Bar{FuelCost: c}
		if peak > 0 {
			bar.Percent = c.Cost * 100 / peak
			bar.Saving = peak - c.Cost
		}
		bars = append(bars, bar)
	}
	return bars
}
