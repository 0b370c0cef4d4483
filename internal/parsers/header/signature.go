package header

import (
	"github.com/deploymenttheory/go-dex/internal/interfaces"
	"github.com/deploymenttheory/go-dex/internal/types"
)

// VerifySignature is a no-op. The SHA-1 signature is decoded for display but
// never checked, and the result always says so.
func VerifySignature(_ interfaces.ByteSource, _ *types.Header) types.SignatureStatus {
	return types.SignatureNotVerified
}
