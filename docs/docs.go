// Package docs registers the OpenAPI description served under /swagger/.
// Regenerate with: swag init -g cmd/walletd/main.go
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
        "/accounts": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Create account",
                "parameters": [
                    {"description": "Account password", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.CreateAccountRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.AccountResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/accounts/import": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Import keystore",
                "parameters": [
                    {"description": "Keystore and passwords", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.ImportKeystoreRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.AccountResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/accounts/import/private-key": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Import raw private key",
                "parameters": [
                    {"description": "Private key and passwords", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.ImportPrivateKeyRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.AccountResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/accounts/{address}/export": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Export keystore",
                "parameters": [
                    {"type": "string", "description": "Account address", "name": "address", "in": "path", "required": true},
                    {"description": "Current and export passwords", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.ExportRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.KeystoreFile"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/accounts/{address}/password": {
            "put": {
                "consumes": ["application/json"],
                "tags": ["accounts"],
                "summary": "Change account password",
                "parameters": [
                    {"type": "string", "description": "Account address", "name": "address", "in": "path", "required": true},
                    {"description": "Current and new passwords", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.ExportRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/accounts/{address}/sign": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Sign message or hash",
                "parameters": [
                    {"type": "string", "description": "Account address", "name": "address", "in": "path", "required": true},
                    {"description": "Message or hash", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.SignRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.SignResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/wallets": {
            "get": {
                "produces": ["application/json"],
                "tags": ["wallets"],
                "summary": "List wallets",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.WalletsResponse"}}
                }
            }
        },
        "/wallets/watch": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["wallets"],
                "summary": "Add watch-only wallet",
                "parameters": [
                    {"description": "Address to watch", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.WatchRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.WalletResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/wallets/recent": {
            "get": {
                "produces": ["application/json"],
                "tags": ["wallets"],
                "summary": "Get recently used wallet",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.WalletResponse"}},
                    "204": {"description": "No recently used wallet"}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "tags": ["wallets"],
                "summary": "Set recently used wallet",
                "parameters": [
                    {"description": "Registered wallet address", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.RecentRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["wallets"],
                "summary": "Clear recently used wallet",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/wallets/{address}": {
            "delete": {
                "tags": ["wallets"],
                "summary": "Delete wallet",
                "parameters": [
                    {"type": "string", "description": "Wallet address", "name": "address", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "model.AccountResponse": {
            "type": "object",
            "properties": {
                "QR": {"type": "string"},
                "address": {"type": "string"},
                "message": {"type": "string"},
                "success": {"type": "boolean"}
            }
        },
        "model.CreateAccountRequest": {
            "type": "object",
            "properties": {
                "password": {"type": "string"}
            }
        },
        "model.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "error": {"type": "string"}
            }
        },
        "model.ExportRequest": {
            "type": "object",
            "properties": {
                "newPassword": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "model.ImportKeystoreRequest": {
            "type": "object",
            "properties": {
                "keystore": {"type": "object"},
                "newPassword": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "model.ImportPrivateKeyRequest": {
            "type": "object",
            "properties": {
                "newPassword": {"type": "string"},
                "passphrase": {"type": "string"},
                "privateKey": {"type": "string"}
            }
        },
        "model.KeystoreFile": {
            "type": "object",
            "properties": {
                "address": {"type": "string"},
                "crypto": {"type": "object"},
                "id": {"type": "string"},
                "version": {"type": "integer"}
            }
        },
        "model.RecentRequest": {
            "type": "object",
            "properties": {
                "address": {"type": "string"}
            }
        },
        "model.SignRequest": {
            "type": "object",
            "properties": {
                "hash": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "model.SignResponse": {
            "type": "object",
            "properties": {
                "address": {"type": "string"},
                "signature": {"type": "string"}
            }
        },
        "model.WalletResponse": {
            "type": "object",
            "properties": {
                "address": {"type": "string"},
                "type": {"type": "string"}
            }
        },
        "model.WalletsResponse": {
            "type": "object",
            "properties": {
                "wallets": {"type": "array", "items": {"$ref": "#/definitions/model.WalletResponse"}}
            }
        },
        "model.WatchRequest": {
            "type": "object",
            "properties": {
                "address": {"type": "string"}
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
	Title:            "ether-keystore API",
	Description:      "Local Ethereum keystore: password-protected accounts, v3 keystore import/export and message signing.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
