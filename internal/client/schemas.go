package client

import (
	"sas-panel/internal/common/validation"
	"sas-panel/internal/models"
)

var nullableString = map[string]interface{}{"type": []interface{}{"string", "null"}}

var timestampPattern = `^[0-9]{4}-[0-9]{2}-[0-9]{2} [0-9]{2}:[0-9]{2}:[0-9]{2}\.[0-9]{3}$`

// Every inbound message must at least carry its token.
var envelopeSchema = validation.MustCompile(map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"id"},
	"properties": map[string]interface{}{
		"id": map[string]interface{}{"type": "string"},
	},
})

var fetchSchema = validation.MustCompile(map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"results"},
	"properties": map[string]interface{}{
		"results": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "object"},
		},
	},
})

var addSchema = validation.MustCompile(map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"added_id": map[string]interface{}{"type": []interface{}{"integer", "null"}},
	},
})

var statusSchema = validation.MustCompile(map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"status": nullableString,
	},
})

func scalarSchema(key string) *validation.Schema {
	return validation.MustCompile(map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			key: nullableString,
		},
	})
}

var recordSchemas = map[models.Kind]*validation.Schema{
	models.KindTemplate: validation.MustCompile(map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"id", "message"},
		"properties": map[string]interface{}{
			"id":      map[string]interface{}{"type": "integer"},
			"label":   nullableString,
			"message": map[string]interface{}{"type": "string"},
		},
	}),
	models.KindRecipient: validation.MustCompile(map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"id"},
		"properties": map[string]interface{}{
			"id":         map[string]interface{}{"type": "integer"},
			"first_name": nullableString,
			"last_name":  nullableString,
			"telephone":  nullableString,
			"address":    nullableString,
		},
	}),
	models.KindRule: validation.MustCompile(map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"id", "recipients", "template", "start_date"},
		"properties": map[string]interface{}{
			"id": map[string]interface{}{"type": "integer"},
			"recipients": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "integer"},
			},
			"template":   map[string]interface{}{"type": "integer"},
			"start_date": map[string]interface{}{"type": "string", "pattern": timestampPattern},
			"end_date": map[string]interface{}{
				"type":    []interface{}{"string", "null"},
				"pattern": timestampPattern,
			},
			"last_executed": map[string]interface{}{
				"type":    []interface{}{"string", "null"},
				"pattern": timestampPattern,
			},
			"interval": map[string]interface{}{"type": []interface{}{"number", "null"}, "minimum": 0, "maximum": models.MaxIntervalSeconds},
			"label":    nullableString,
		},
	}),
}
