package config

// Exported alias for white-box testing.
var Validate = validate
