package assets

import _ "embed"

// Chime is the reminder sound: 16-bit mono PCM WAV.
//
//go:embed chime.wav
var Chime []byte
