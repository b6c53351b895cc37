// Package audio plays the interval-completion alert.
// Sound files are decoded with beep (WAV, OGG and MP3) and cached; when no
// sound is configured the terminal bell is rung instead.
package audio
