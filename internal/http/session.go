package http

import (
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/constants"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/securefile"
)

// IssueSessionToken mints a token for this agent run and writes it to
// dir/agent-token, readable by the owner only. Local clients read the file
// and send the token in the X-Pyro-Session header.
func IssueSessionToken(dir string) (string, error) {
	token := uuid.NewString()
	path := filepath.Join(dir, constants.AgentTokenFile)
	if err := securefile.AtomicWriteFile(path, []byte(token), constants.FilePerm); err != nil {
		return "", errors.Wrap(err, "write agent token")
	}
	return token, nil
}
