// Package ui styles the terminal output of the formkit CLI: upload alerts,
// submission outcomes, notifications and upload progress bars.
package ui
