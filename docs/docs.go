// Package docs holds the OpenAPI document served under /swagger. It mirrors
// the swag annotations on the handlers in cmd/storefront-api.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/orders": {
            "get": {
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "List the 100 most recent orders",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httpx.Envelope"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/httpx.Envelope"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Create an order",
                "parameters": [
                    {"description": "order", "name": "order", "in": "body", "required": true, "schema": {"$ref": "#/definitions/order.CreateOrderRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/httpx.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httpx.Envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpx.Envelope"}}
                }
            }
        },
        "/api/orders/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Get an order with resolved line items",
                "parameters": [
                    {"type": "string", "description": "Order ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httpx.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httpx.Envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpx.Envelope"}}
                }
            }
        },
        "/api/orders/{id}/status": {
            "patch": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Change an order's status",
                "parameters": [
                    {"type": "string", "description": "Order ID", "name": "id", "in": "path", "required": true},
                    {"description": "status", "name": "status", "in": "body", "required": true, "schema": {"$ref": "#/definitions/order.UpdateStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httpx.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httpx.Envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpx.Envelope"}}
                }
            }
        },
        "/api/products": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "List products",
                "parameters": [
                    {"type": "string", "description": "Category filter", "name": "category", "in": "query"},
                    {"type": "boolean", "description": "Featured filter", "name": "featured", "in": "query"},
                    {"type": "string", "default": "-createdAt", "description": "Sort field, '-' prefix for descending", "name": "sort", "in": "query"},
                    {"type": "integer", "default": 50, "description": "Maximum results", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httpx.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httpx.Envelope"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Create a product",
                "parameters": [
                    {"description": "product", "name": "product", "in": "body", "required": true, "schema": {"$ref": "#/definitions/product.CreateProductRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/httpx.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httpx.Envelope"}}
                }
            }
        },
        "/api/products/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Get a product",
                "parameters": [
                    {"type": "string", "description": "Product ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httpx.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httpx.Envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpx.Envelope"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Update a product (partial)",
                "parameters": [
                    {"type": "string", "description": "Product ID", "name": "id", "in": "path", "required": true},
                    {"description": "fields", "name": "product", "in": "body", "required": true, "schema": {"$ref": "#/definitions/product.UpdateProductRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httpx.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httpx.Envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpx.Envelope"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Delete a product",
                "parameters": [
                    {"type": "string", "description": "Product ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httpx.Envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpx.Envelope"}}
                }
            }
        },
        "/api/stats": {
            "get": {
                "produces": ["application/json"],
                "tags": ["stats"],
                "summary": "Counts, revenue and recent orders",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httpx.Envelope"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["ops"],
                "summary": "Liveness and store status",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["ops"],
                "summary": "Readiness probe",
                "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}
            }
        }
    },
    "definitions": {
        "httpx.Envelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {},
                "count": {"type": "integer"},
                "error": {"type": "string"},
                "kind": {"type": "string"},
                "reason": {"type": "string"},
                "field": {"type": "string"},
                "path": {"type": "string"}
            }
        },
        "order.CreateOrderItem": {
            "type": "object",
            "properties": {
                "product_id": {"type": "string", "example": "4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"},
                "product_name": {"type": "string", "example": "Mechanical Keyboard"},
                "quantity": {"type": "integer", "example": 2},
                "unit_price": {"type": "string", "example": "10.00"}
            }
        },
        "order.CreateOrderRequest": {
            "type": "object",
            "properties": {
                "customer_name": {"type": "string", "example": "Ada Lovelace"},
                "customer_email": {"type": "string", "example": "ada@example.com"},
                "shipping_address": {"type": "string", "example": "12 Analytical St"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/order.CreateOrderItem"}},
                "total_amount": {"type": "string", "example": "25.00"}
            }
        },
        "order.UpdateStatusRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "shipped"}
            }
        },
        "product.CreateProductRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "example": "Mechanical Keyboard"},
                "description": {"type": "string", "example": "RGB 60%"},
                "price": {"type": "string", "example": "199.90"},
                "category": {"type": "string", "example": "Electronics"},
                "stock": {"type": "integer", "example": 10},
                "image_url": {"type": "string"},
                "rating": {"type": "number", "example": 4.5},
                "reviews": {"type": "integer"},
                "featured": {"type": "boolean"}
            }
        },
        "product.UpdateProductRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "description": {"type": "string"},
                "price": {"type": "string"},
                "category": {"type": "string"},
                "stock": {"type": "integer"},
                "image_url": {"type": "string"},
                "rating": {"type": "number"},
                "reviews": {"type": "integer"},
                "featured": {"type": "boolean"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Storefront API",
	Description:      "Catalog, orders and statistics.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
