package service

import "errors"

// Сентинельные ошибки слоя сервисов. HTTP-обработчики сопоставляют их
// с кодами ответов через errors.Is.
var (
	// ErrNotFound - объект с таким идентификатором не зарегистрирован.
	ErrNotFound = errors.New("объект не найден")

	// ErrIntegrityViolation - идентификатору соответствует более одной
	// записи реестра. Разрешение невозможно до устранения дубликатов.
	ErrIntegrityViolation = errors.New("нарушение целостности реестра: найдено несколько записей")

	// ErrUnsupportedAccessMethod - запрошенный метод доступа
	// не поддерживается.
	ErrUnsupportedAccessMethod = errors.New("метод доступа не поддерживается")
)
