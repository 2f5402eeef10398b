package webhook_handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Webhook payloads cross a trust boundary: the signature proves who sent
// the bytes, not that they have the expected shape. Each handler parses
// through a schema and gets a typed value or an error, never a loose map.

const orderSchemaJSON = `{
  "type": "object",
  "required": ["id"],
  "properties": {
    "id": {"type": "integer"},
    "order_number": {"type": "integer"},
    "email": {"type": "string"},
    "total_price": {"type": "string"},
    "financial_status": {"type": ["string", "null"]},
    "currency": {"type": "string"}
  }
}`

const productSchemaJSON = `{
  "type": "object",
  "required": ["id"],
  "properties": {
    "id": {"type": "integer"},
    "title": {"type": "string"},
    "variants": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id"],
        "properties": {
          "id": {"type": "integer"},
          "sku": {"type": ["string", "null"]},
          "inventory_quantity": {"type": "integer"}
        }
      }
    }
  }
}`

const customerSchemaJSON = `{
  "type": "object",
  "required": ["id"],
  "properties": {
    "id": {"type": "integer"},
    "email": {"type": ["string", "null"]}
  }
}`

type orderPayload struct {
	ID              int64  `json:"id"`
	OrderNumber     int64  `json:"order_number"`
	Email           string `json:"email"`
	TotalPrice      string `json:"total_price"`
	FinancialStatus string `json:"financial_status"`
	Currency        string `json:"currency"`
}

type productVariant struct {
	ID                int64  `json:"id"`
	SKU               string `json:"sku"`
	InventoryQuantity int    `json:"inventory_quantity"`
}

type productPayload struct {
	ID       int64            `json:"id"`
	Title    string           `json:"title"`
	Variants []productVariant `json:"variants"`
}

type customerPayload struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

var (
	orderSchema    = mustCompile("order.json", orderSchemaJSON)
	productSchema  = mustCompile("product.json", productSchemaJSON)
	customerSchema = mustCompile("customer.json", customerSchemaJSON)
)

func mustCompile(name, schemaJSON string) *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(schemaJSON))
	if err != nil {
		panic(fmt.Sprintf("parse %s schema: %v", name, err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, doc); err != nil {
		panic(fmt.Sprintf("add %s schema: %v", name, err))
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("compile %s schema: %v", name, err))
	}
	return schema
}

func parsePayload(schema *jsonschema.Schema, payload []byte, out any) error {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to parse payload: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("payload schema validation failed: %w", err)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("failed to decode payload: %w", err)
	}
	return nil
}
