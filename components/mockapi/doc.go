// Package mockapi serves an in-memory master/detail dataset over the form
// transport contract. Every endpoint accepts POST bodies (form encoded,
// multipart or JSON) and answers with a {msg, data, total} envelope.
//
// The default dataset is loaded from the embedded data/seed.yaml. Parent
// ids start with "P" and child ids with "C", so a single remove endpoint
// can address both levels.
package mockapi
