package models

import (
	"time"

	"github.com/google/uuid"
)

// Movie is a catalog entry.
type Movie struct {
	ID          uuid.UUID `json:"_id"`
	Title       string    `json:"Title"`
	Description string    `json:"Description"`
	Genre       Genre     `json:"Genre"`
	Director    Director  `json:"Director"`
	Actors      []string  `json:"Actors"`
	ImagePath   string    `json:"ImagePath,omitempty"`
	Featured    bool      `json:"Featured"`
}

// Genre describes a movie genre.
type Genre struct {
	Name        string `json:"Name" bson:"Name"`
	Description string `json:"Description" bson:"Description"`
}

// Director describes a movie director.
type Director struct {
	Name  string     `json:"Name" bson:"Name"`
	Bio   string     `json:"Bio" bson:"Bio"`
	Birth *time.Time `json:"Birth,omitempty" bson:"Birth,omitempty"`
	Death *time.Time `json:"Death,omitempty" bson:"Death,omitempty"`
}
