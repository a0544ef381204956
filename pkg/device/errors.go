package device

import "errors"

// ErrStructural marks malformed circuit structure: unknown templates or
// controlling sources, node count mismatches and duplicate names. Specific
// errors wrap it.
var ErrStructural = errors.New("structural error")
