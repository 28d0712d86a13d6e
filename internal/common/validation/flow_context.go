package validation

// FlowContextSchema constrains a session context received from the caller.
const FlowContextSchema = `{
  "type": "object",
  "required": ["sessionId", "industry"],
  "properties": {
    "sessionId": {"type": "string", "minLength": 1},
    "industry": {"type": "string", "enum": ["coaching", "clinics", "ecommerce"]},
    "userInfo": {
      "type": "object",
      "properties": {
        "name": {"type": "string"},
        "phone": {"type": "string"},
        "email": {"type": "string"}
      }
    },
    "responses": {
      "type": ["object", "null"],
      "additionalProperties": {"type": "string"}
    },
    "segment": {"type": "string"},
    "score": {"type": "number", "minimum": 0, "maximum": 100},
    "currentStep": {"type": "string"},
    "behavior": {
      "type": "object",
      "properties": {
        "timeSpent": {"type": "number", "minimum": 0},
        "pagesVisited": {"type": "integer", "minimum": 0},
        "returnVisits": {"type": "integer", "minimum": 0}
      }
    },
    "preferences": {
      "type": "object",
      "properties": {
        "channels": {
          "type": ["array", "null"],
          "items": {"type": "string", "enum": ["email", "whatsapp", "sms"]}
        }
      }
    }
  }
}`

var flowContext = MustCompile("flow-context", FlowContextSchema)

// ValidateFlowContext validates a decoded FlowContext document.
func ValidateFlowContext(doc interface{}) *ValidationResult {
	return flowContext.Validate(doc)
}
