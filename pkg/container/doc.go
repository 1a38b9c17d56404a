// Package container hosts forms inside a modal, inline on a page, or as a
// search panel. Containers own the per-interaction state (visibility, alert,
// field errors) and observe the pipeline's lifecycle machine for loading and
// business errors; they never drive the machine themselves.
package container
