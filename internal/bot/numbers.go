// ABOUTME: Integer parsing for the /sum and /max commands
// ABOUTME: Accepts numbers separated by spaces and/or commas, negatives included

package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// parseNumbers splits text on commas and whitespace and parses each piece
// as a signed integer. Empty pieces (doubled separators) are skipped.
func parseNumbers(text string) ([]int, error) {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})

	nums := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", f, err)
		}
		nums = append(nums, n)
	}
	return nums, nil
}

func (b *Bot) handleSum(ctx context.Context, req *request) (*reply, error) {
	nums, err := parseNumbers(req.args)
	if err != nil || len(nums) == 0 {
		return &reply{text: "Could not parse the numbers. Example: /sum 1, 2, 3"}, nil
	}

	total := 0
	for _, n := range nums {
		total += n
	}
	return &reply{text: fmt.Sprintf("Sum: %d", total)}, nil
}

func (b *Bot) handleMax(ctx context.Context, req *request) (*reply, error) {
	nums, err := parseNumbers(req.args)
	if err != nil || len(nums) == 0 {
		return &reply{text: "Could not parse the numbers. Example: /max 1, 2, 3"}, nil
	}

	best := nums[0]
	for _, n := range nums[1:] {
		if n > best {
			best = n
		}
	}
	return &reply{text: fmt.Sprintf("Max: %d", best)}, nil
}
