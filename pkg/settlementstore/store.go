// Package settlementstore persists the submitter's cursor and the
// settlement contract descriptor in Postgres, an optional durability layer
// on top of §4.5's "recover the cursor from latestBlockNumber()" rule —
// useful when an operator wants to see submission history without
// round-tripping the remote contract on every query.
package settlementstore

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct{ DB *pgxpool.Pool }

func New(db *pgxpool.Pool) *Store { return &Store{DB: db} }

// ContractDescriptor mirrors §6's local JSON descriptor: address,
// deployer, network and rpc_url for the settlement contract.
type ContractDescriptor struct {
	Address  string `json:"address"`
	Deployer string `json:"deployer"`
	Network  string `json:"network"`
	RPCURL   string `json:"rpc_url"`
}

// SubmissionRecord is one successful submitStateRoot call, kept for
// operator visibility. The submitter's cursor recovery also reads the
// highest recorded block (LastSubmittedBlock) and uses it when it is above
// the contract's own latestBlockNumber().
type SubmissionRecord struct {
	ContractAddress string
	BlockNumber     uint64
	StateRoot       string
	SubmittedAt     time.Time
}

func (s *Store) SaveContractDescriptor(ctx context.Context, d ContractDescriptor) error {
	_, err := s.DB.Exec(ctx, `
INSERT INTO fvl_contract_descriptors(address,deployer,network,rpc_url)
VALUES($1,$2,$3,$4)
ON CONFLICT (address) DO UPDATE SET deployer=EXCLUDED.deployer, network=EXCLUDED.network, rpc_url=EXCLUDED.rpc_url
`, d.Address, d.Deployer, d.Network, d.RPCURL)
	return err
}

func (s *Store) GetContractDescriptor(ctx context.Context, address string) (ContractDescriptor, error) {
	var d ContractDescriptor
	err := s.DB.QueryRow(ctx, `
SELECT address,deployer,network,rpc_url FROM fvl_contract_descriptors WHERE address=$1
`, address).Scan(&d.Address, &d.Deployer, &d.Network, &d.RPCURL)
	return d, err
}

func (s *Store) RecordSubmission(ctx context.Context, rec SubmissionRecord) error {
	_, err := s.DB.Exec(ctx, `
INSERT INTO fvl_submissions(contract_address,block_number,state_root,submitted_at)
VALUES($1,$2,$3,$4)
ON CONFLICT (contract_address,block_number) DO NOTHING
`, rec.ContractAddress, rec.BlockNumber, rec.StateRoot, rec.SubmittedAt)
	return err
}

// LastSubmittedBlock reports the highest block number this process has
// recorded a submission for, or ok=false if none exist yet.
func (s *Store) LastSubmittedBlock(ctx context.Context, contractAddress string) (uint64, bool, error) {
	var n uint64
	err := s.DB.QueryRow(ctx, `
SELECT COALESCE(MAX(block_number), 0) FROM fvl_submissions WHERE contract_address=$1
`, contractAddress).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return n, n > 0, nil
}
