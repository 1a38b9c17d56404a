// Package pipeline implements the submission flow shared by every form host:
// validate and collect, apply submit transforms, then dispatch either locally
// or over a Transport. Progress is tracked by a Machine whose observers drive
// host-side loading indicators and alerts.
package pipeline
