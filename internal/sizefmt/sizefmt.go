// Пакет sizefmt — кодек человекочитаемых размеров ("2.3G" ↔ байты).
// Формат хранится в колонке pretty_size таблицы manifest и по определению
// lossy: Parse(Format(n)) совпадает с n только с точностью до одного
// знака после запятой. Код, которому нужны точные байты, обязан читать
// size из записей файлов, а не восстанавливать его из pretty_size.
package sizefmt

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Множители единиц (степени 1024).
const (
	unitB int64 = 1
	unitK int64 = 1 << 10
	unitM int64 = 1 << 20
	unitG int64 = 1 << 30
	unitT int64 = 1 << 40
)

// Format возвращает человекочитаемое представление размера в байтах.
// Выбирается наибольшая единица из {T, G, M, K}, не превышающая bytes;
// значение округляется до одного знака после запятой (половина — от нуля).
// Размеры меньше 1K выводятся целым числом байт: "512B", "0B".
func Format(bytes int64) string {
	switch {
	case bytes >= unitT:
		return formatUnit(bytes, unitT, "T")
	case bytes >= unitG:
		return formatUnit(bytes, unitG, "G")
	case bytes >= unitM:
		return formatUnit(bytes, unitM, "M")
	case bytes >= unitK:
		return formatUnit(bytes, unitK, "K")
	default:
		return fmt.Sprintf("%dB", bytes)
	}
}

// formatUnit делит bytes на unit и форматирует с одним знаком после запятой.
func formatUnit(bytes, unit int64, letter string) string {
	value := math.Round(float64(bytes)/float64(unit)*10) / 10
	return strconv.FormatFloat(value, 'f', 1, 64) + letter
}

// Parse восстанавливает количество байт из человекочитаемой строки.
// Последняя буква трактуется как единица (регистронезависимо);
// нераспознанная или отсутствующая буква — множитель 1, вся строка
// парсится как число. Результат усекается к нулю.
func Parse(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("пустая строка размера")
	}

	multiplier := unitB
	num := s
	switch strings.ToUpper(s[len(s)-1:]) {
	case "B":
		num = s[:len(s)-1]
	case "K":
		multiplier = unitK
		num = s[:len(s)-1]
	case "M":
		multiplier = unitM
		num = s[:len(s)-1]
	case "G":
		multiplier = unitG
		num = s[:len(s)-1]
	case "T":
		multiplier = unitT
		num = s[:len(s)-1]
	}

	value, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("некорректный размер %q: %w", s, err)
	}

	return int64(value * float64(multiplier)), nil
}
