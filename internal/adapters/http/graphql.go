package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/fencekeeper/internal/core/domain"
)

const merchantCtxKey ctxKey = "merchant_id"

func merchantFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(merchantCtxKey).(string)
	return id
}

func coordsToGQL(c domain.Coordinates) []float64 {
	return []float64{c[0], c[1]}
}

func zoneToGQL(z domain.Zone) map[string]interface{} {
	vertices := make([][]float64, 0, len(z.Vertices))
	for _, v := range z.Vertices {
		vertices = append(vertices, coordsToGQL(v))
	}
	return map[string]interface{}{
		"id":          z.ID,
		"fenceName":   z.Name,
		"fenceDesc":   z.Description,
		"ruleId":      z.RuleID,
		"shapeType":   string(z.ShapeType),
		"coordinates": vertices,
		"radius":      z.RadiusMeters,
		"createdAt":   z.CreatedAt.Format(time.RFC3339),
		"updatedAt":   z.UpdatedAt.Format(time.RFC3339),
	}
}

func orderToGQL(o domain.Order) map[string]interface{} {
	return map[string]interface{}{
		"id":               o.ID,
		"userId":           o.UserID,
		"createTime":       o.CreateTime.Format(time.RFC3339),
		"amount":           o.Amount.String(),
		"status":           string(o.Status),
		"recipientName":    o.RecipientName,
		"recipientAddress": o.RecipientAddress,
		"recipientCoords":  coordsToGQL(o.RecipientCoords),
		"isAbnormal":       o.IsAbnormal,
		"abnormalReason":   o.AbnormalReason,
		"ruleId":           o.RuleID,
	}
}

// buildSchema creates the GraphQL schema wired to our services. Every
// resolver is scoped to the merchant stored in the request context.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	coordsType := graphql.NewList(graphql.Float)

	zoneType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Fence",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.Int},
			"fenceName":   &graphql.Field{Type: graphql.String},
			"fenceDesc":   &graphql.Field{Type: graphql.String},
			"ruleId":      &graphql.Field{Type: graphql.Int},
			"shapeType":   &graphql.Field{Type: graphql.String},
			"coordinates": &graphql.Field{Type: graphql.NewList(coordsType)},
			"radius":      &graphql.Field{Type: graphql.Float},
			"createdAt":   &graphql.Field{Type: graphql.String},
			"updatedAt":   &graphql.Field{Type: graphql.String},
		},
	})

	orderType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Order",
		Fields: graphql.Fields{
			"id":               &graphql.Field{Type: graphql.String},
			"userId":           &graphql.Field{Type: graphql.String},
			"createTime":       &graphql.Field{Type: graphql.String},
			"amount":           &graphql.Field{Type: graphql.String},
			"status":           &graphql.Field{Type: graphql.String},
			"recipientName":    &graphql.Field{Type: graphql.String},
			"recipientAddress": &graphql.Field{Type: graphql.String},
			"recipientCoords":  &graphql.Field{Type: coordsType},
			"isAbnormal":       &graphql.Field{Type: graphql.Boolean},
			"abnormalReason":   &graphql.Field{Type: graphql.String},
			"ruleId":           &graphql.Field{Type: graphql.Int},
		},
	})

	orderPageType := graphql.NewObject(graphql.ObjectConfig{
		Name: "OrderPage",
		Fields: graphql.Fields{
			"orders":      &graphql.Field{Type: graphql.NewList(orderType)},
			"totalCount":  &graphql.Field{Type: graphql.Int},
			"currentPage": &graphql.Field{Type: graphql.Int},
			"pageSize":    &graphql.Field{Type: graphql.Int},
		},
	})

	deliveryCheckType := graphql.NewObject(graphql.ObjectConfig{
		Name: "DeliveryCheck",
		Fields: graphql.Fields{
			"isDeliverable": &graphql.Field{Type: graphql.Boolean},
			"ruleId":        &graphql.Field{Type: graphql.Int},
			"message":       &graphql.Field{Type: graphql.String},
		},
	})

	ruleType := graphql.NewObject(graphql.ObjectConfig{
		Name: "DeliveryRule",
		Fields: graphql.Fields{
			"id":    &graphql.Field{Type: graphql.Int},
			"name":  &graphql.Field{Type: graphql.String},
			"logic": &graphql.Field{Type: graphql.Int},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"zones": &graphql.Field{
				Type:        graphql.NewList(zoneType),
				Description: "List the merchant's delivery fences",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					zones, err := deps.Zones.List(p.Context, merchantFromCtx(p.Context))
					if err != nil {
						return nil, err
					}
					result := make([]map[string]interface{}, 0, len(zones))
					for _, z := range zones {
						result = append(result, zoneToGQL(z))
					}
					return result, nil
				},
			},
			"zone": &graphql.Field{
				Type:        zoneType,
				Description: "Get a fence by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(int)
					z, err := deps.Zones.GetByID(p.Context, merchantFromCtx(p.Context), int64(id))
					if err != nil {
						return nil, err
					}
					return zoneToGQL(*z), nil
				},
			},
			"deliveryCheck": &graphql.Field{
				Type:        deliveryCheckType,
				Description: "Check whether a point is inside any fence",
				Args: graphql.FieldConfigArgument{
					"lng": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					point := domain.Coordinates{p.Args["lng"].(float64), p.Args["lat"].(float64)}
					check, err := deps.Delivery.Check(p.Context, merchantFromCtx(p.Context), point)
					if err != nil {
						return nil, err
					}
					return map[string]interface{}{
						"isDeliverable": check.Deliverable,
						"ruleId":        check.RuleID,
						"message":       check.Message,
					}, nil
				},
			},
			"orders": &graphql.Field{
				Type:        orderPageType,
				Description: "Page through the merchant's orders",
				Args: graphql.FieldConfigArgument{
					"page":          &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 1},
					"pageSize":      &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: domain.DefaultPageSize},
					"userId":        &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
					"status":        &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
					"searchQuery":   &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
					"sortBy":        &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: domain.SortByCreateTime},
					"sortDirection": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: string(domain.SortDesc)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q := domain.OrderListQuery{
						Page:          p.Args["page"].(int),
						PageSize:      p.Args["pageSize"].(int),
						UserID:        p.Args["userId"].(string),
						Status:        p.Args["status"].(string),
						SearchQuery:   p.Args["searchQuery"].(string),
						SortBy:        p.Args["sortBy"].(string),
						SortDirection: p.Args["sortDirection"].(string),
					}
					page, err := deps.Orders.List(p.Context, merchantFromCtx(p.Context), q)
					if err != nil {
						return nil, err
					}
					orders := make([]map[string]interface{}, 0, len(page.Orders))
					for _, o := range page.Orders {
						orders = append(orders, orderToGQL(o))
					}
					return map[string]interface{}{
						"orders":      orders,
						"totalCount":  page.TotalCount,
						"currentPage": page.CurrentPage,
						"pageSize":    page.PageSize,
					}, nil
				},
			},
			"deliveryRules": &graphql.Field{
				Type:        graphql.NewList(ruleType),
				Description: "List all delivery rules",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Rules.List(p.Context)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		ctx := context.WithValue(c.UserContext(), merchantCtxKey, merchantID(c))
		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        ctx,
		})

		return c.JSON(result)
	}
}
