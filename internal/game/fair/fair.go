package fair

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"github.com/putridahliana91-coder/senoplan/internal/lib/random"
)

// DigitDrawer produces uniform result digits 0-9 through an HMAC-SHA512
// seed/nonce scheme, so every draw leaves a verifiable proof instead of a
// bare rand call.
type DigitDrawer struct {
	mu         sync.Mutex
	serverSeed string
	nonce      int
	log        *slog.Logger
}

// Proof is the audit record of one draw. With the revealed seeds and nonce
// anyone can recompute the hash and the digit.
type Proof struct {
	ClientSeed string `json:"client_seed"`
	ServerSeed string `json:"server_seed"`
	Hash       string `json:"hash"`
	Nonce      int    `json:"nonce"`
	Digit      int    `json:"digit"`
}

func NewDigitDrawer(log *slog.Logger) *DigitDrawer {
	return &DigitDrawer{
		serverSeed: random.NewRandomString(64),
		log:        log,
	}
}

// Draw returns the next result digit and its proof. The server seed rotates
// after every draw so past proofs stay verifiable without exposing future
// results.
func (d *DigitDrawer) Draw() (int, Proof) {
	d.mu.Lock()
	defer d.mu.Unlock()

	clientSeed := uuid.New().String()

	proof := compute(d.serverSeed, clientSeed, d.nonce)

	d.nonce++
	d.serverSeed = random.NewRandomString(64)

	return proof.Digit, proof
}

func compute(serverSeed, clientSeed string, nonce int) Proof {
	h := hmac.New(sha512.New, []byte(serverSeed))
	h.Write([]byte(clientSeed + "-" + strconv.Itoa(nonce)))
	hash := hex.EncodeToString(h.Sum(nil))

	// The first five hex chars fit int64 comfortably; modulo 10 keeps the
	// digit uniform enough for a 20-bit source.
	decimal, _ := strconv.ParseInt(hash[:5], 16, 64)

	return Proof{
		ClientSeed: clientSeed,
		ServerSeed: serverSeed,
		Hash:       hash,
		Nonce:      nonce,
		Digit:      int(decimal % 10),
	}
}
