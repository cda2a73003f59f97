package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/easyaudit-api/internal/models"
)

// decodeJSONBody decodes the request body keeping numbers as json.Number so
// properties survive storage without float rounding.
func decodeJSONBody(c *fiber.Ctx, out interface{}) error {
	body := c.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return errors.New("empty body")
	}
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	return decoder.Decode(out)
}

func splitAndTrim(input string) []string {
	parts := strings.Split(input, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// queryList collects a repeated and/or comma separated query parameter into one flat list.
func queryList(c *fiber.Ctx, key string) []string {
	var result []string
	for _, raw := range c.Context().QueryArgs().PeekMulti(key) {
		result = append(result, splitAndTrim(string(raw))...)
	}
	return result
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}

func parseQueryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// queryReference reads a <prefix>_type/<prefix>_id pair. ok is false when only one half is present.
func queryReference(c *fiber.Ctx, prefix string) (*models.Reference, bool) {
	typeTag := strings.TrimSpace(c.Query(prefix + "_type"))
	id := strings.TrimSpace(c.Query(prefix + "_id"))
	if typeTag == "" && id == "" {
		return nil, true
	}
	ref := models.NewReference(typeTag, id)
	return ref, ref != nil
}
