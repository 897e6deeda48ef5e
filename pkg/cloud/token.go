package cloud

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// getToken requests a new IMDSv2 session token. The token lives only for
// the duration of one Get call.
func (c *MetadataClient) getToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.endpoint+TokenPath, nil)
	if err != nil {
		return "", fmt.Errorf("could not create token request: %w", err)
	}
	req.Header.Set(TokenTTLHeader, strconv.FormatInt(int64(c.tokenTTL/time.Second), 10))

	body, err := c.send(req, TokenPath)
	if err != nil {
		return "", err
	}

	token := strings.TrimSpace(string(body))
	if token == "" {
		return "", &ParseError{Path: TokenPath, Err: errors.New("empty token")}
	}
	return token, nil
}
