package models

import (
	"bytes"
	"encoding/json"
)

type Cart struct {
	ID     *string    `json:"_id,omitempty"`
	UserID string     `json:"userId"`
	Items  []CartItem `json:"items"`
}

type CartItem struct {
	ID       string     `json:"_id"`
	Product  ProductRef `json:"productId"`
	Quantity int        `json:"quantity"`
}

// ProductRef est la référence produit d'une ligne de panier. Le backend renvoie
// le champ "productId" peuplé (objet produit complet), mais si le produit a été
// supprimé on reçoit soit null, soit l'identifiant brut resté en base. Les deux
// branches sont explicites : Resolved() dit si le produit est exploitable,
// RawID() donne le meilleur identifiant disponible dans tous les cas.
type ProductRef struct {
	Product *Product
	Raw     string
}

func (r ProductRef) Resolved() bool {
	return r.Product != nil
}

// RawID retourne l'identifiant du produit si la référence est résolue,
// sinon la valeur brute reçue du backend (possiblement vide).
func (r ProductRef) RawID() string {
	if r.Product != nil {
		return r.Product.ID
	}
	return r.Raw
}

func (r *ProductRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = ProductRef{}
		return nil
	}

	// Identifiant brut non peuplé
	if data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*r = ProductRef{Raw: raw}
		return nil
	}

	var p Product
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = ProductRef{Product: &p, Raw: p.ID}
	return nil
}

func (r ProductRef) MarshalJSON() ([]byte, error) {
	if r.Product != nil {
		return json.Marshal(r.Product)
	}
	if r.Raw != "" {
		return json.Marshal(r.Raw)
	}
	return []byte("null"), nil
}
