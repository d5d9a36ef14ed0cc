package reconcile

import "github.com/kailas-cloud/aptdex/internal/domain/apartment"

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func meta(district, neighborhood, name string) apartment.Metadata {
	return apartment.Metadata{District: district, Neighborhood: neighborhood, Name: name}
}

func trade(district, neighborhood, name, price string) apartment.Transaction {
	return apartment.Transaction{
		District:     district,
		Neighborhood: neighborhood,
		Name:         name,
		Price:        price,
	}
}
