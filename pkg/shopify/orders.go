package shopify

import "context"

// OrderNode is one fulfilled order with its shipping destination.
type OrderNode struct {
	ID        string
	Name      string
	Shipping  *ShippingAddress
	Fulfilled bool
}

// ExternalID returns the numeric id portion of the order GID.
func (o OrderNode) ExternalID() string {
	return ParseGID(o.ID)
}

// ShippingAddress carries the destination fields, with optional geocoordinates.
type ShippingAddress struct {
	City      string
	Zip       string
	Country   string
	Latitude  *float64
	Longitude *float64
}

// OrderPage is one page of the fulfilled-orders query.
type OrderPage struct {
	Orders      []OrderNode
	EndCursor   string
	HasNextPage bool
}

const ordersQuery = `
query orders($first: Int!, $after: String) {
  orders(first: $first, after: $after, query: "fulfillment_status:shipped") {
    pageInfo {
      hasNextPage
      endCursor
    }
    nodes {
      id
      name
      displayFulfillmentStatus
      shippingAddress {
        city
        zip
        countryCodeV2
        latitude
        longitude
      }
    }
  }
}`

// PageFulfilledOrders fetches one page of fulfilled orders, cursor-based.
func (c *Client) PageFulfilledOrders(ctx context.Context, pageSize int, after string) (*OrderPage, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	variables := map[string]any{"first": pageSize}
	if after != "" {
		variables["after"] = after
	}

	var data struct {
		Orders struct {
			PageInfo struct {
				HasNextPage bool   `json:"hasNextPage"`
				EndCursor   string `json:"endCursor"`
			} `json:"pageInfo"`
			Nodes []struct {
				ID                       string `json:"id"`
				Name                     string `json:"name"`
				DisplayFulfillmentStatus string `json:"displayFulfillmentStatus"`
				ShippingAddress          *struct {
					City          string   `json:"city"`
					Zip           string   `json:"zip"`
					CountryCodeV2 string   `json:"countryCodeV2"`
					Latitude      *float64 `json:"latitude"`
					Longitude     *float64 `json:"longitude"`
				} `json:"shippingAddress"`
			} `json:"nodes"`
		} `json:"orders"`
	}
	if err := c.execute(ctx, ordersQuery, variables, &data); err != nil {
		return nil, err
	}

	page := &OrderPage{
		EndCursor:   data.Orders.PageInfo.EndCursor,
		HasNextPage: data.Orders.PageInfo.HasNextPage,
	}
	for _, node := range data.Orders.Nodes {
		order := OrderNode{
			ID:        node.ID,
			Name:      node.Name,
			Fulfilled: node.DisplayFulfillmentStatus == "FULFILLED",
		}
		if node.ShippingAddress != nil {
			order.Shipping = &ShippingAddress{
				City:      node.ShippingAddress.City,
				Zip:       node.ShippingAddress.Zip,
				Country:   node.ShippingAddress.CountryCodeV2,
				Latitude:  node.ShippingAddress.Latitude,
				Longitude: node.ShippingAddress.Longitude,
			}
		}
		page.Orders = append(page.Orders, order)
	}
	return page, nil
}
