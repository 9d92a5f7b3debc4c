package service

import (
	"fmt"
	"strings"
)

// accessURLFunc строит URL доступа по пути файла в хранилище.
// Пустая строка означает, что путь непригоден для построения URL.
type accessURLFunc func(storagePath string) string

// AccessURLBuilder строит URL доступа к файлам по методу доступа.
// Методы регистрируются в таблице стратегий: добавление нового
// метода - новая запись в таблице, без изменения кода разрешения.
type AccessURLBuilder struct {
	methods map[string]accessURLFunc
}

// NewAccessURLBuilder возвращает построитель с единственным
// поддерживаемым методом https.
func NewAccessURLBuilder(accessDomain string) *AccessURLBuilder {
	b := &AccessURLBuilder{methods: make(map[string]accessURLFunc)}
	b.methods["https"] = func(storagePath string) string {
		return httpsAccessURL(accessDomain, storagePath)
	}
	return b
}

// Build возвращает URL доступа для указанного метода.
// Неизвестный метод - ErrUnsupportedAccessMethod. Путь, из которого
// URL построить нельзя, даёт пустую строку без ошибки: решение о
// статусе остаётся за вызывающим.
func (b *AccessURLBuilder) Build(method, storagePath string) (string, error) {
	fn, ok := b.methods[method]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedAccessMethod, method)
	}
	return fn(storagePath), nil
}

// Supported сообщает, зарегистрирован ли метод доступа.
func (b *AccessURLBuilder) Supported(method string) bool {
	_, ok := b.methods[method]
	return ok
}

// httpsAccessURL отбрасывает первые два сегмента пути хранилища
// (пространство имён и внутренний каталог) и подставляет остаток
// под доменом раздачи. Путь короче трёх сегментов не адресуем
// снаружи - возвращается пустая строка.
func httpsAccessURL(accessDomain, storagePath string) string {
	trimmed := strings.TrimPrefix(storagePath, "/")
	parts := strings.SplitN(trimmed, "/", 3)
	if len(parts) < 3 || parts[2] == "" {
		return ""
	}
	return fmt.Sprintf("https://%s/%s", accessDomain, parts[2])
}
