// internal/pagectx/pagectx_test.go
package pagectx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromURL(t *testing.T) {
	tests := []struct {
		name     string
		location string
		want     Context
	}{
		{"shipments listing", "https://console.example.com/shipments", ShipmentsListing},
		{"shipments listing trailing slash", "https://console.example.com/shipments/", ShipmentsListing},
		{"shipments listing with query", "https://console.example.com/shipments?page=2", ShipmentsListing},
		{"shipment detail", "https://console.example.com/shipments/8812", ShipmentDetail},
		{"shipment detail subpage", "https://console.example.com/shipments/8812/edit", ShipmentDetail},
		{"batches listing", "https://console.example.com/batches", BatchesListing},
		{"batch detail stays batches", "https://console.example.com/batches/41", BatchesListing},
		{"import selection", "https://console.example.com/import/select", ImportSelection},
		{"dashboard", "https://console.example.com/dashboard", Other},
		{"root", "https://console.example.com/", Other},
		{"garbage", "::not a url::", Other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromURL(tt.location))
		})
	}
}

func TestCooldownKeys(t *testing.T) {
	assert.Equal(t, KeyShipments, ShipmentsListing.CooldownKey())
	assert.Equal(t, KeyBatches, BatchesListing.CooldownKey())
	assert.Equal(t, "", ShipmentDetail.CooldownKey())
	assert.Equal(t, "", Other.CooldownKey())

	assert.True(t, ShipmentsListing.AutoPrints())
	assert.True(t, BatchesListing.AutoPrints())
	assert.False(t, ImportSelection.AutoPrints())
}
