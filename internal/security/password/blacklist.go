package password

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Blacklist es un set de passwords prohibidos (comparación case-insensitive).
// Es inmutable después de construido.
type Blacklist struct {
	data map[string]struct{}
}

// NewBlacklist arma la lista desde palabras sueltas.
func NewBlacklist(words ...string) *Blacklist {
	bl := &Blacklist{data: make(map[string]struct{}, len(words))}
	for _, w := range words {
		bl.add(w)
	}
	return bl
}

// LoadBlacklist lee un archivo con un password por línea (# comenta).
// Un path vacío retorna una lista vacía.
func LoadBlacklist(path string) (*Blacklist, error) {
	if strings.TrimSpace(path) == "" {
		return NewBlacklist(), nil
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadBlacklist(f)
}

// ReadBlacklist parsea el formato de LoadBlacklist desde r.
func ReadBlacklist(r io.Reader) (*Blacklist, error) {
	bl := NewBlacklist()
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); !strings.HasPrefix(line, "#") {
			bl.add(line)
		}
	}
	return bl, sc.Err()
}

func (b *Blacklist) add(w string) {
	if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
		b.data[w] = struct{}{}
	}
}

// Contains es nil-safe.
func (b *Blacklist) Contains(pwd string) bool {
	if b == nil {
		return false
	}
	_, ok := b.data[strings.ToLower(strings.TrimSpace(pwd))]
	return ok
}

// Len retorna la cantidad de entradas.
func (b *Blacklist) Len() int {
	if b == nil {
		return 0
	}
	return len(b.data)
}
