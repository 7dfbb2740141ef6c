// Package ui implements the interactive prompts and output styles of the CLI.
//
// [Ask] runs a bubbletea program around a bubbles/textinput [Model]. Enter submits a non-empty answer, esc and
// ctrl+c dismiss the prompt with [shared.ErrCancelled]. Key help is rendered with charmbracelet/bubbles/help.
//
// [Styles] is the lipgloss [Palette] the runner uses to color progress, retry and summary lines.
package ui
