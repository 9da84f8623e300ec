package util

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatFileSize печатает размер в человекочитаемом виде: основание 1024,
// не больше двух знаков после запятой, хвостовые нули отбрасываются.
// FormatFileSize(0) == "0 Bytes", FormatFileSize(1536) == "1.5 KB".
func FormatFileSize(size int64) string {
	if size <= 0 {
		return "0 Bytes"
	}
	value := float64(size)
	i := 0
	for value >= 1024 && i < len(sizeUnits)-1 {
		value /= 1024
		i++
	}
	value = math.Round(value*100) / 100
	return strconv.FormatFloat(value, 'f', -1, 64) + " " + sizeUnits[i]
}

// SavingsPercent возвращает процент экономии после конвертации.
// Отрицательное значение значит, что файл вырос.
func SavingsPercent(original, encoded int64) float64 {
	if original <= 0 {
		return 0
	}
	return math.Round((1-float64(encoded)/float64(original))*1000) / 10
}

// PrettyJSON форматирует значение с отступом в два пробела, как это делает
// вывод API-тестера. Строки возвращаются как есть.
func PrettyJSON(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return ""
	}
	return strings.TrimRight(buf.String(), "\n")
}
