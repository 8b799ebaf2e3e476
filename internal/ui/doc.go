// package ui implements the interactive terminal interface.
//
// The UI is a thin rendering layer over the pipeline: it subscribes to
// snapshots, draws the lyric window around the current line, and sends
// language changes back to the controller. It is built with
// [github.com/charmbracelet/bubbletea] following the Elm architecture.
package ui
