package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"vitrine_admin/internal/session"
)

// Taxonomie des échecs côté client. Les erreurs de validation de formulaire
// n'apparaissent pas ici : elles sont résolues localement et n'atteignent
// jamais le réseau.
var (
	ErrNotAuthenticated = errors.New("non authentifié")
	ErrNotFound         = errors.New("ressource introuvable")
	ErrRemote           = errors.New("erreur du service distant")
)

// Client est le transport vers l'API catalogue distante. Chaque requête porte
// l'en-tête x-user-id de l'identité appelante ; c'est l'absence de cet en-tête
// que le backend utilise pour rejeter les requêtes non authentifiées.
type Client struct {
	base    string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*http.Response]
}

func New(baseURL string) *Client {
	breaker := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:    "api-catalogue",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Client{
		base:    strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		breaker: breaker,
	}
}

func (c *Client) do(ctx context.Context, ident session.Identity, method, path, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemote, err)
	}

	req.Header.Set("x-user-id", ident.UserID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		// Un 5xx compte comme échec pour le breaker
		if resp.StatusCode >= http.StatusInternalServerError {
			resp.Body.Close()
			return nil, fmt.Errorf("%w: statut %d", ErrRemote, resp.StatusCode)
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: circuit ouvert", ErrRemote)
		}
		if errors.Is(err, ErrRemote) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrRemote, err)
	}

	return resp, nil
}

// decode consomme la réponse, traduit les statuts d'erreur et décode le corps
// dans out quand out est non nil.
func decode(resp *http.Response, out any) error {
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrNotAuthenticated
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: statut %d", ErrRemote, resp.StatusCode)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: décodage réponse: %v", ErrRemote, err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, ident session.Identity, path string, payload, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: encodage requête: %v", ErrRemote, err)
	}

	resp, err := c.do(ctx, ident, http.MethodPost, path, "application/json", strings.NewReader(string(data)))
	if err != nil {
		return err
	}
	return decode(resp, out)
}
