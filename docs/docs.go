package docs

import "github.com/swaggo/swag"

const docTemplate = `{
  "swagger": "2.0",
  "info": {
    "title": "Field Ops Assistant",
    "description": "Question answering over salesmen and repair devices",
    "version": "1.0"
  },
  "basePath": "/",
  "paths": {
    "/api/assistant": {
      "post": {
        "tags": ["assistant"],
        "summary": "Ask the assistant",
        "consumes": ["application/json"],
        "produces": ["application/json"],
        "parameters": [
          {"name": "X-Session-Id", "in": "header", "type": "string", "required": false},
          {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssistantRequest"}}
        ],
        "responses": {
          "200": {"description": "OK", "schema": {"$ref": "#/definitions/AssistantResponse"}},
          "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/AssistantResponse"}},
          "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/AssistantResponse"}}
        }
      }
    },
    "/api/assistant/reset": {
      "post": {
        "tags": ["assistant"],
        "summary": "Reset conversation",
        "parameters": [
          {"name": "X-Session-Id", "in": "header", "type": "string", "required": false}
        ],
        "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
      }
    },
    "/api/debug/classify": {
      "get": {
        "tags": ["debug"],
        "summary": "Explain classification",
        "parameters": [
          {"name": "question", "in": "query", "type": "string", "required": true},
          {"name": "X-Admin-Key", "in": "header", "type": "string", "required": false}
        ],
        "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}}
      }
    },
    "/healthz": {
      "get": {
        "tags": ["health"],
        "summary": "Health check",
        "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}
      }
    }
  },
  "definitions": {
    "AssistantRequest": {
      "type": "object",
      "properties": {
        "question": {"type": "string"},
        "session_id": {"type": "string"}
      }
    },
    "AssistantResponse": {
      "type": "object",
      "properties": {
        "answer": {"type": "string"},
        "session_id": {"type": "string"},
        "intent": {"type": "string"}
      }
    }
  }
}`

func init() {
	swag.Register(swag.Name, &s{})
}

type s struct{}

func (s *s) ReadDoc() string {
	return docTemplate
}
