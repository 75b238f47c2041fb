package validate

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Gunvolt24/cart-service/internal/domain"
	"github.com/Gunvolt24/cart-service/internal/ports"
)

// Result - статистика валидации.
type Result struct {
	Valid   int
	Invalid int
}

func (r Result) String() string { return fmt.Sprintf("%d valid / %d invalid", r.Valid, r.Invalid) }

// ValidateJSONLStream - читает JSONL, валидирует каждую строку и передаёт валидные товары в fn.
// Пустые строки пропускаются, невалидные считаются и пропускаются.
func ValidateJSONLStream(ctx context.Context, validator ports.ProductValidator, ir io.Reader, fn func(*domain.Product) error) (Result, error) {
	var res Result

	scanner := bufio.NewScanner(ir)
	// запас на большие строки
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		p, err := ValidateProductFromJSON(ctx, validator, line)
		if err != nil {
			res.Invalid++
			continue
		}
		if err := fn(p); err != nil {
			return res, err
		}
		res.Valid++
	}
	if err := scanner.Err(); err != nil {
		return res, fmt.Errorf("scan: %w", err)
	}
	return res, nil
}
