package chi

import _ "embed"

// chatUI is the single-page chat client served at GET /.
//
//go:embed ui/index.html
var chatUI []byte
