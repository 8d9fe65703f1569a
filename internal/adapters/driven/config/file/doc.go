// Package file provides file-based implementations of configuration
// and prompt storage. Configuration lives in a TOML file under
// ~/.paragraf/, prompts in user-editable text files under
// ~/.paragraf/prompts/.
package file
