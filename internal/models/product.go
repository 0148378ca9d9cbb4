package models

import "time"

// Product est la copie lecture d'un produit possédé par l'API distante.
// Les champs suivent le format du document renvoyé par le backend.
type Product struct {
	ID          string     `json:"_id"`
	Name        string     `json:"name"`
	Price       float64    `json:"price"`
	Description string     `json:"description,omitempty"`
	Images      []string   `json:"images"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}
