// Package docs embeds the OpenAPI description of the JSON API and the two
// browser viewers that render it.
package docs

import _ "embed"

// OpenAPI is the OpenAPI 3 document served at /swagger.json.
//
//go:embed openapi.json
var OpenAPI []byte

// SwaggerUI loads the Swagger UI bundle from a CDN and points it at
// /swagger.json.
const SwaggerUI = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Room Reservation API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({url: "/swagger.json", dom_id: "#swagger-ui"});
  </script>
</body>
</html>`

// ReDoc renders the same document with ReDoc.
const ReDoc = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Room Reservation API</title>
</head>
<body>
  <redoc spec-url="/swagger.json"></redoc>
  <script src="https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"></script>
</body>
</html>`
