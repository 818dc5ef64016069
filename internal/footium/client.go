package footium

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// Resolver translates numeric player/club identifiers into display context.
// Implementations degrade to empty names on lookup failure so a single bad
// id never aborts a whole enrichment batch.
type Resolver interface {
	ResolvePlayer(ctx context.Context, playerID string) (Player, error)
	ResolveClub(ctx context.Context, clubID string) (Club, error)
}

type Player struct {
	FullName string `json:"fullName"`
	ClubID   int    `json:"clubId"`
}

type Club struct {
	Name string `json:"name"`
}

// Client is a GraphQL client for the Footium read API. Lookups go through
// query variables rather than string interpolation.
type Client struct {
	url        string
	httpClient *http.Client
	log        *logrus.Logger
}

func NewClient(url string, timeout time.Duration, log *logrus.Logger) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors,omitempty"`
}

// Query executes a GraphQL operation and unmarshals the data payload into
// out. Used both by the resolver lookups and the lookup passthrough routes.
func (c *Client) Query(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("graphql request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("graphql status %d: %s", resp.StatusCode, data)
	}

	var gr graphqlResponse
	if err := json.Unmarshal(data, &gr); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(gr.Errors) > 0 {
		return fmt.Errorf("graphql error: %s", gr.Errors[0].Message)
	}
	if out != nil {
		if err := json.Unmarshal(gr.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}

const playerQuery = `
query Player($playerId: String!) {
  players(where: {id: {equals: $playerId}}) {
    fullName
    club {
      id
    }
  }
}`

// ResolvePlayer looks up a player's display name and owning club. A failed
// or empty lookup returns a zero Player along with the error; callers keep
// going with the placeholder.
func (c *Client) ResolvePlayer(ctx context.Context, playerID string) (Player, error) {
	var data struct {
		Players []struct {
			FullName string `json:"fullName"`
			Club     struct {
				ID int `json:"id"`
			} `json:"club"`
		} `json:"players"`
	}

	err := c.Query(ctx, playerQuery, map[string]any{"playerId": playerID}, &data)
	if err != nil {
		c.log.WithFields(logrus.Fields{"playerId": playerID, "error": err}).Warn("player lookup failed")
		return Player{}, err
	}
	if len(data.Players) == 0 {
		c.log.WithField("playerId", playerID).Warn("player lookup empty")
		return Player{}, nil
	}
	return Player{FullName: data.Players[0].FullName, ClubID: data.Players[0].Club.ID}, nil
}

const clubQuery = `
query Club($clubId: Int!) {
  clubs(where: {id: {equals: $clubId}}) {
    name
  }
}`

// ResolveClub looks up a club's display name. Same degradation contract as
// ResolvePlayer.
func (c *Client) ResolveClub(ctx context.Context, clubID string) (Club, error) {
	id, err := clubIDArg(clubID)
	if err != nil {
		return Club{}, err
	}

	var data struct {
		Clubs []struct {
			Name string `json:"name"`
		} `json:"clubs"`
	}

	if err := c.Query(ctx, clubQuery, map[string]any{"clubId": id}, &data); err != nil {
		c.log.WithFields(logrus.Fields{"clubId": clubID, "error": err}).Warn("club lookup failed")
		return Club{}, err
	}
	if len(data.Clubs) == 0 {
		c.log.WithField("clubId", clubID).Warn("club lookup empty")
		return Club{}, nil
	}
	return Club{Name: data.Clubs[0].Name}, nil
}

func clubIDArg(clubID string) (int, error) {
	id, err := strconv.Atoi(clubID)
	if err != nil {
		return 0, fmt.Errorf("invalid club id %q: %w", clubID, err)
	}
	return id, nil
}
