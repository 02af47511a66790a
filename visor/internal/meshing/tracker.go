package meshing

import (
	"log"
	"sync"
)

// ResourceTracker acumula recursos descartáveis criados durante a
// montagem e a finalização de um chunk. Todo recurso é registrado no
// momento da criação; se a montagem abortar no meio, Dispose ainda
// libera tudo o que já existia.
type ResourceTracker struct {
	mu       sync.Mutex
	handles  []Disposable
	named    map[string]Disposable
	disposed bool
}

func NewResourceTracker() *ResourceTracker {
	return &ResourceTracker{named: make(map[string]Disposable)}
}

// Add registra um recurso anônimo para liberação futura.
func (t *ResourceTracker) Add(d Disposable) {
	if d == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.disposed {
		// Tracker já liberado; descarta imediatamente para não vazar.
		d.Dispose()
		return
	}
	t.handles = append(t.handles, d)
}

// GetOrCreate devolve o recurso nomeado se já existir, senão invoca a
// factory e registra o resultado. Recursos compartilhados (superfícies
// de água por chunk+altura, por exemplo) usam isso para dedupe.
func (t *ResourceTracker) GetOrCreate(name string, factory func() (Disposable, error)) (Disposable, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if d, ok := t.named[name]; ok {
		return d, nil
	}
	d, err := factory()
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, nil
	}
	if t.disposed {
		// Montagem abortada no meio; libera no ato para não vazar.
		disposeOne(d, name)
		return d, nil
	}
	t.named[name] = d
	return d, nil
}

// Dispose libera todos os recursos registrados. Chamadas repetidas são
// inofensivas. Falha em um recurso é logada e a liberação continua.
func (t *ResourceTracker) Dispose() {
	t.mu.Lock()
	if t.disposed {
		t.mu.Unlock()
		return
	}
	t.disposed = true
	handles := t.handles
	named := t.named
	t.handles = nil
	t.named = nil
	t.mu.Unlock()

	for _, d := range handles {
		disposeOne(d, "")
	}
	for name, d := range named {
		disposeOne(d, name)
	}
}

// Len informa quantos recursos estão registrados no momento.
func (t *ResourceTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.handles) + len(t.named)
}

func disposeOne(d Disposable, name string) {
	defer func() {
		if r := recover(); r != nil {
			if name != "" {
				log.Printf("[Recursos] Falha ao liberar recurso '%s': %v", name, r)
			} else {
				log.Printf("[Recursos] Falha ao liberar recurso: %v", r)
			}
		}
	}()
	d.Dispose()
}
