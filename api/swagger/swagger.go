package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "NPLVision SOL Engine API",
        "description": "Statute-of-limitations calculation and monitoring for defaulted loan portfolios",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "SOL", "description": "Per-loan SOL calculations and events"},
        {"name": "Jurisdictions", "description": "Statute rule reference data"},
        {"name": "Scheduler", "description": "Daily batch update control"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/sol/loans/{id}/events": {
            "post": {
                "tags": ["SOL"],
                "summary": "Notify the engine of a loan lifecycle event",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoanEventRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sol/loans/{id}/recalculate": {
            "post": {
                "tags": ["SOL"],
                "summary": "Synchronously recalculate a loan's SOL position",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sol/loans/{id}/calculation": {
            "get": {
                "tags": ["SOL"],
                "summary": "Get the current SOL calculation for a loan",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No SOL data yet"}
                }
            }
        },
        "/sol/loans/{id}/audit": {
            "get": {
                "tags": ["SOL"],
                "summary": "List a loan's SOL audit history",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sol/alerts": {
            "get": {
                "tags": ["SOL"],
                "summary": "List current expiration alerts",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sol/jurisdictions": {
            "get": {
                "tags": ["Jurisdictions"],
                "summary": "List all jurisdiction statute rules",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sol/jurisdictions/{state}": {
            "get": {
                "tags": ["Jurisdictions"],
                "summary": "Get a jurisdiction's statute rule",
                "parameters": [
                    {"name": "state", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown jurisdiction"}
                }
            },
            "put": {
                "tags": ["Jurisdictions"],
                "summary": "Apply an administrative statute rule correction",
                "parameters": [
                    {"name": "state", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/JurisdictionUpsertRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sol/scheduler/run": {
            "post": {
                "tags": ["Scheduler"],
                "summary": "Trigger the daily SOL update now",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sol/scheduler/status": {
            "get": {
                "tags": ["Scheduler"],
                "summary": "Get scheduler status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sol/scheduler/runs": {
            "get": {
                "tags": ["Scheduler"],
                "summary": "List recent batch runs",
                "parameters": [
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoanEventRequest": {
            "type": "object",
            "properties": {
                "event_type": {"type": "string", "enum": ["payment_received", "missed_payment", "foreclosure_filed", "acceleration", "maturity_reached", "status_change"]},
                "event_date": {"type": "string", "format": "date-time"},
                "metadata": {"type": "object"}
            },
            "required": ["event_type", "event_date"]
        },
        "JurisdictionUpsertRequest": {
            "type": "object",
            "properties": {
                "risk_tier": {"type": "string", "enum": ["HIGH", "MEDIUM", "LOW"]},
                "lien_years": {"type": "integer"},
                "note_years": {"type": "integer"},
                "foreclosure_years": {"type": "integer"},
                "deficiency_years": {"type": "integer"},
                "trigger_events": {"type": "array", "items": {"type": "string"}},
                "tolling_provisions": {"type": "array", "items": {"type": "string"}},
                "lien_extinguished": {"type": "boolean"},
                "foreclosure_barred": {"type": "boolean"}
            },
            "required": ["risk_tier", "trigger_events"]
        },
        "SOLCalculation": {
            "type": "object",
            "properties": {
                "loan_id": {"type": "string"},
                "jurisdiction_id": {"type": "string"},
                "trigger_event": {"type": "string"},
                "trigger_date": {"type": "string", "format": "date-time"},
                "is_future_trigger": {"type": "boolean"},
                "base_expiration_date": {"type": "string", "format": "date-time"},
                "tolling_events": {"type": "array", "items": {"type": "object"}},
                "total_tolled_days": {"type": "integer"},
                "adjusted_expiration_date": {"type": "string", "format": "date-time"},
                "days_until_expiration": {"type": "integer"},
                "is_expired": {"type": "boolean"},
                "risk_score": {"type": "integer"},
                "risk_level": {"type": "string"},
                "risk_factors": {"type": "object"},
                "calculated_at": {"type": "string", "format": "date-time"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
