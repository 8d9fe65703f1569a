package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/lovbase/paragraf/internal/core/domain"
	"github.com/lovbase/paragraf/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads LLM prompts from user-editable files on disk.
// Prompts are loaded from a configurable directory with fallback to embedded defaults.
//
// The store uses lazy initialisation - files are only created when first accessed,
// not in the constructor. This makes testing easier and avoids unexpected I/O.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts contains embedded default prompts.
// These are used when user files don't exist and as the initial content for new files.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptAnswerSystem: `Du er en juridisk assistent med speciale i dansk skatteret.

Du besvarer spørgsmål UDELUKKENDE ud fra de kilder, du får stillet til rådighed. Regler:
1. Svar på dansk, præcist og i et fagligt sprog.
2. Henvis til kilderne med [n], hvor n er kildens nummer i konteksten.
3. Angiv lovhenvisninger som i kilderne, fx "LL § 9 C, stk. 4".
4. Hvis kilderne ikke indeholder svaret, så sig det klart. Gæt aldrig.
5. Hvis en regel er ophævet eller midlertidig, skal det fremgå af svaret.`,

	driven.PromptAnswer: `Kilder:
%s

Spørgsmål: %s

Besvar spørgsmålet ud fra kilderne ovenfor. Citér kilder med [n].`,

	driven.PromptQueryRewrite: `Omskriv spørgsmålet til en søgeforespørgsel mod en samling af danske skatteretlige dokumenter.
Bevar lovhenvisninger (fx "§ 9 C") og fagudtryk. Tilføj relevante synonymer.
Returnér KUN den omskrevne forespørgsel, intet andet.

Spørgsmål: %s
Forespørgsel:`,

	driven.PromptContextAnalysis: `Læs begyndelsen af et dansk juridisk dokument og beskriv det som JSON.

Returnér KUN et JSON-objekt med disse nøgler:
- "title": dokumentets titel
- "law_area": lovområdet, fx "personbeskatning"
- "doc_type": en af "lovtekst", "vejledning", "cirkulaere", "afgoerelse", "juridisk_vejledning", "generisk"
- "key_concepts": liste af centrale juridiske begreber
- "audience": målgruppen, fx "rådgivere" eller "borgere"
- "summary": et resumé på 2-3 sætninger

Dokument:
%s`,

	driven.PromptChunkExtract: `Opdel følgende udsnit af et dansk juridisk dokument i semantiske afsnit.

Returnér KUN et JSON-array. Hvert element har disse nøgler:
- "content": afsnittets fulde tekst, uændret
- "type": en af "regel", "note", "reference", "undtagelse", "eksempel", "definition", "oversigt", "afsnit"
- "section": paragraf eller afsnitsnummer, fx "§ 9 C" eller "C.A.4.3.3", ellers ""
- "title": afsnittets overskrift, ellers ""
- "concepts": liste af juridiske nøglebegreber i afsnittet

Regler:
1. Udelad ingen tekst. Alt indhold skal indgå i præcis ét afsnit.
2. "regel" er normerende lovtekst; "note" er forklarende kommentarer.
3. Hold sammenhængende stykker samlet.

Udsnit:
%s`,
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.paragraf/prompts/.
//
// The constructor does not perform any I/O - directory creation and
// file writes happen lazily on first Load() call.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".paragraf", "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// On first call, initialises the prompt directory and creates default files.
// Returns cached value if available, otherwise loads from file.
// Falls back to embedded default if file doesn't exist.
func (s *PromptStore) Load(name string) (string, error) {
	if _, ok := defaultPrompts[name]; !ok {
		return "", fmt.Errorf("unknown prompt %q: %w", name, domain.ErrNotFound)
	}

	// Ensure directory and defaults exist (lazy init)
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		// Fall back to embedded defaults if init failed
		return defaultPrompts[name], nil
	}

	// Check cache first (read lock)
	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	// Load from file (no lock held during I/O)
	prompt, err := s.loadFromFile(name)
	if err != nil {
		// Fall back to embedded default
		return defaultPrompts[name], nil
	}

	// Cache the result (write lock)
	// Use double-check pattern to avoid overwriting concurrent loads
	s.mu.Lock()
	if _, ok := s.cache[name]; !ok {
		s.cache[name] = prompt
	} else {
		// Another goroutine loaded it first, use their value
		prompt = s.cache[name]
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() error {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
	return nil
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory and default files.
// Called once via sync.Once on first Load().
func (s *PromptStore) initialise() {
	// Create directory
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	// Create default prompt files (only if they don't exist)
	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	// Create README
	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

// loadFromFile reads a prompt from disk.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	path := filepath.Join(s.promptDir, name+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil // Already exists or stat error (ignore)
	}

	content := `# Paragraf Prompts

This directory contains the customisable prompts used by paragraf's
LLM features. All prompts address Danish tax-law material.

## Files

- ` + "`answer_system.txt`" + ` - System prompt for question answering
- ` + "`answer.txt`" + ` - User prompt template: context block, then question
- ` + "`query_rewrite.txt`" + ` - Rewrites a question into a search query
- ` + "`context_analysis.txt`" + ` - Document analysis returning JSON
- ` + "`chunk_extract.txt`" + ` - Chunk extraction returning a JSON array

## Customisation

Edit any file to customise LLM behaviour. Changes take effect on the
next command or after restarting the TUI.

## Format Placeholders

Prompts use Go fmt placeholders:
- ` + "`%s`" + ` - String (e.g., the question or document text)

Ensure customised prompts keep placeholders in the same order.
`
	return os.WriteFile(path, []byte(content), 0600)
}
