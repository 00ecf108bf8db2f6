package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Destination struct {
	gorm.Model
	Name         string         `json:"name" gorm:"uniqueIndex;not null"`
	Description  string         `json:"description" gorm:"type:text;not null"`
	Country      string         `json:"country" gorm:"not null;index"`
	City         string         `json:"city" gorm:"not null;index"`
	Price        float64        `json:"price" gorm:"not null"`
	Duration     int            `json:"duration" gorm:"not null"` // days
	Available    *bool          `json:"available" gorm:"default:true"`
	Features     datatypes.JSON `json:"features"`
	MaxTravelers int            `json:"maxTravelers" gorm:"default:10"`
}

// IsAvailable treats a never-set flag as available, matching the column default.
func (d *Destination) IsAvailable() bool {
	return d.Available == nil || *d.Available
}

// Custom JSON marshaling so Features comes out as a string array and
// Available as a plain bool.
func (d *Destination) MarshalJSON() ([]byte, error) {
	type Alias Destination
	aux := &struct {
		Features  []string `json:"features"`
		Available bool     `json:"available"`
		*Alias
	}{
		Features:  []string{},
		Available: d.IsAvailable(),
		Alias:     (*Alias)(d),
	}

	if d.Features != nil {
		var features []string
		if err := json.Unmarshal(d.Features, &features); err == nil && features != nil {
			aux.Features = features
		}
	}

	return json.Marshal(aux)
}
