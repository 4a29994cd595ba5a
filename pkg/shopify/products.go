package shopify

import (
	"context"
	"strings"

	pkgerrors "github.com/ecotrackhq/ecotrack-backend/pkg/errors"
)

// MetafieldNamespace is the namespace all sustainability metafields live under.
const MetafieldNamespace = "sustainability"

// Sustainability metafield keys.
const (
	KeySustainableMaterials = "sustainable_materials"
	KeyLocallyProduced      = "locally_produced"
	KeyPackagingWeight      = "packaging_weight"
	KeyProductWeight        = "product_weight"
)

// DefaultPageSize is the catalog page size used by reconciliation.
const DefaultPageSize = 50

// ProductNode is one catalog product with its sustainability metafields.
type ProductNode struct {
	ID         string
	Title      string
	Metafields map[string]string
}

// ExternalID returns the numeric id portion of the product GID.
func (p ProductNode) ExternalID() string {
	return ParseGID(p.ID)
}

// ProductPage is one page of the catalog query.
type ProductPage struct {
	Products    []ProductNode
	EndCursor   string
	HasNextPage bool
}

const productsQuery = `
query products($first: Int!, $after: String) {
  products(first: $first, after: $after) {
    pageInfo {
      hasNextPage
      endCursor
    }
    nodes {
      id
      title
      metafields(namespace: "sustainability", first: 10) {
        nodes {
          key
          value
        }
      }
    }
  }
}`

// PageProducts fetches one page of the product catalog, cursor-based.
func (c *Client) PageProducts(ctx context.Context, pageSize int, after string) (*ProductPage, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	variables := map[string]any{"first": pageSize}
	if after != "" {
		variables["after"] = after
	}

	var data struct {
		Products struct {
			PageInfo struct {
				HasNextPage bool   `json:"hasNextPage"`
				EndCursor   string `json:"endCursor"`
			} `json:"pageInfo"`
			Nodes []struct {
				ID         string `json:"id"`
				Title      string `json:"title"`
				Metafields struct {
					Nodes []struct {
						Key   string `json:"key"`
						Value string `json:"value"`
					} `json:"nodes"`
				} `json:"metafields"`
			} `json:"nodes"`
		} `json:"products"`
	}
	if err := c.execute(ctx, productsQuery, variables, &data); err != nil {
		return nil, err
	}

	page := &ProductPage{
		EndCursor:   data.Products.PageInfo.EndCursor,
		HasNextPage: data.Products.PageInfo.HasNextPage,
	}
	for _, node := range data.Products.Nodes {
		product := ProductNode{
			ID:         node.ID,
			Title:      node.Title,
			Metafields: make(map[string]string, len(node.Metafields.Nodes)),
		}
		for _, mf := range node.Metafields.Nodes {
			product.Metafields[mf.Key] = mf.Value
		}
		page.Products = append(page.Products, product)
	}
	return page, nil
}

// MetafieldInput is one metafield write in a metafieldsSet mutation.
type MetafieldInput struct {
	Key   string
	Value string
	Type  string
}

const metafieldsSetMutation = `
mutation metafieldsSet($metafields: [MetafieldsSetInput!]!) {
  metafieldsSet(metafields: $metafields) {
    metafields {
      key
    }
    userErrors {
      field
      message
    }
  }
}`

// SetMetafields writes sustainability metafields on the given product. Field
// errors come back as the UserError slice, not as an error.
func (c *Client) SetMetafields(ctx context.Context, productGID string, inputs []MetafieldInput) ([]UserError, error) {
	if strings.TrimSpace(productGID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product gid is required")
	}
	if len(inputs) == 0 {
		return nil, nil
	}

	metafields := make([]map[string]any, 0, len(inputs))
	for _, in := range inputs {
		fieldType := in.Type
		if fieldType == "" {
			fieldType = "single_line_text_field"
		}
		metafields = append(metafields, map[string]any{
			"ownerId":   productGID,
			"namespace": MetafieldNamespace,
			"key":       in.Key,
			"value":     in.Value,
			"type":      fieldType,
		})
	}

	var data struct {
		MetafieldsSet struct {
			UserErrors []UserError `json:"userErrors"`
		} `json:"metafieldsSet"`
	}
	if err := c.execute(ctx, metafieldsSetMutation, map[string]any{"metafields": metafields}, &data); err != nil {
		return nil, err
	}
	return data.MetafieldsSet.UserErrors, nil
}

// ProductGID renders a product admin GID from its numeric external id.
func ProductGID(externalID string) string {
	return "gid://shopify/Product/" + externalID
}

// ParseGID returns the trailing id segment of an admin GID, or the input
// unchanged when it is not GID-shaped.
func ParseGID(gid string) string {
	if idx := strings.LastIndex(gid, "/"); idx >= 0 {
		return gid[idx+1:]
	}
	return gid
}
