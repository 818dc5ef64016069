package footium

import (
	"context"
	"encoding/json"
)

// Passthrough lookups used by the /api routes. These return the raw GraphQL
// data payload untouched so the response shape matches the upstream API.

const clubDetailQuery = `
query ClubDetail($clubId: Int!) {
  clubs(where: {id: {equals: $clubId}}) {
    id
    name
    description
    owner {
      address
    }
  }
}`

const clubPlayersQuery = `
query ClubPlayers($clubId: Int!) {
  clubs(where: {id: {equals: $clubId}}) {
    id
    name
    registeredPlayers(skip: 0, take: 100) {
      id
    }
  }
}`

const playerDetailQuery = `
query PlayerDetail($playerId: String!) {
  players(where: {id: {equals: $playerId}}) {
    fullName
    club {
      id
    }
    imageUrls {
      player
      card
      thumb
    }
  }
}`

func (c *Client) ClubDetail(ctx context.Context, clubID string) (json.RawMessage, error) {
	id, err := clubIDArg(clubID)
	if err != nil {
		return nil, err
	}
	return c.rawQuery(ctx, clubDetailQuery, map[string]any{"clubId": id})
}

func (c *Client) ClubPlayers(ctx context.Context, clubID string) (json.RawMessage, error) {
	id, err := clubIDArg(clubID)
	if err != nil {
		return nil, err
	}
	return c.rawQuery(ctx, clubPlayersQuery, map[string]any{"clubId": id})
}

func (c *Client) PlayerDetail(ctx context.Context, playerID string) (json.RawMessage, error) {
	return c.rawQuery(ctx, playerDetailQuery, map[string]any{"playerId": playerID})
}

func (c *Client) rawQuery(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.Query(ctx, query, variables, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
