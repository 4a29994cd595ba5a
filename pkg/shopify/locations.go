package shopify

import "context"

// Location is the shop's primary fulfillment location.
type Location struct {
	Name      string
	Latitude  *float64
	Longitude *float64
}

const primaryLocationQuery = `
query primaryLocation {
  location {
    name
    address {
      latitude
      longitude
    }
  }
}`

// PrimaryLocation returns the shop's primary location, or nil when the shop
// has none configured.
func (c *Client) PrimaryLocation(ctx context.Context) (*Location, error) {
	var data struct {
		Location *struct {
			Name    string `json:"name"`
			Address struct {
				Latitude  *float64 `json:"latitude"`
				Longitude *float64 `json:"longitude"`
			} `json:"address"`
		} `json:"location"`
	}
	if err := c.execute(ctx, primaryLocationQuery, nil, &data); err != nil {
		return nil, err
	}
	if data.Location == nil {
		return nil, nil
	}
	return &Location{
		Name:      data.Location.Name,
		Latitude:  data.Location.Address.Latitude,
		Longitude: data.Location.Address.Longitude,
	}, nil
}
