package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_DeliversToSubscriber(t *testing.T) {
	hub := NewHub()

	ch, unsubscribe := hub.Subscribe("u1")
	defer unsubscribe()

	hub.Success("u1", "Produit ajouté au panier !")

	select {
	case n := <-ch:
		assert.Equal(t, "success", n.Type)
		assert.Equal(t, "Produit ajouté au panier !", n.Message)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("notification non reçue")
	}
}

func TestHub_IsolatesUsers(t *testing.T) {
	hub := NewHub()

	ch, unsubscribe := hub.Subscribe("u1")
	defer unsubscribe()

	hub.Error("u2", "Échec de l'ajout du produit.")

	select {
	case n := <-ch:
		t.Fatalf("notification d'un autre utilisateur reçue : %v", n)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_UnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub()

	ch, unsubscribe := hub.Subscribe("u1")
	unsubscribe()

	hub.Success("u1", "après désabonnement")

	select {
	case n, ok := <-ch:
		require.True(t, ok)
		t.Fatalf("notification reçue après désabonnement : %v", n)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_FullSubscriberDoesNotBlock(t *testing.T) {
	hub := NewHub()

	_, unsubscribe := hub.Subscribe("u1")
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		// Bien au-delà de la capacité du canal : l'envoi doit abandonner,
		// jamais bloquer la mutation appelante.
		for i := 0; i < 100; i++ {
			hub.Success("u1", "toast")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publication bloquée par un abonné saturé")
	}
}
