package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/StudioBookingBack/internal/apperr"
	"github.com/saeid-a/StudioBookingBack/internal/models"
	"github.com/saeid-a/StudioBookingBack/internal/ports"
)

const contractColumns = `id, kind, status, money, credits, start_date, end_date, purchased_by, sale_by, created_at, updated_at`

type ContractRepository struct {
	db DBTX
}

func NewContractRepository(db DBTX) *ContractRepository {
	return &ContractRepository{db: db}
}

func scanContract(row pgx.Row) (*models.Contract, error) {
	var contract models.Contract
	err := row.Scan(
		&contract.ID,
		&contract.Kind,
		&contract.Status,
		&contract.Money,
		&contract.Credits,
		&contract.StartDate,
		&contract.EndDate,
		&contract.PurchasedBy,
		&contract.SaleBy,
		&contract.CreatedAt,
		&contract.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *ContractRepository) Create(ctx context.Context, input ports.CreateContractInput) (*models.Contract, error) {
	query := `
		INSERT INTO contracts (id, kind, status, money, credits, start_date, end_date, purchased_by, sale_by)
		VALUES ($1, $2, 'NEWLY_CREATED', $3, $4, $5, $6, $7, $8)
		RETURNING ` + contractColumns

	contract, err := scanContract(r.db.QueryRow(
		ctx,
		query,
		uuid.NewString(),
		input.Kind,
		input.Money,
		input.Credits,
		input.StartDate,
		input.EndDate,
		input.PurchasedBy,
		input.SaleBy,
	))
	if err != nil {
		return nil, fmt.Errorf("insert contract: %w", err)
	}
	return contract, nil
}

func (r *ContractRepository) GetByID(ctx context.Context, id string) (*models.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts WHERE id = $1`
	contract, err := scanContract(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("contract")
		}
		return nil, fmt.Errorf("get contract: %w", err)
	}
	return contract, nil
}

func (r *ContractRepository) UpdateStatusIfCurrent(
	ctx context.Context,
	id string,
	current, next models.ContractStatus,
) (*models.Contract, error) {
	query := `
		UPDATE contracts
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + contractColumns

	contract, err := scanContract(r.db.QueryRow(ctx, query, id, current, next))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrStaleWrite
		}
		return nil, fmt.Errorf("update contract status: %w", err)
	}
	return contract, nil
}

func (r *ContractRepository) List(ctx context.Context, filter ports.ContractListFilter) ([]models.Contract, int, error) {
	args := []any{}
	whereParts := []string{"TRUE"}

	if filter.SaleBy != "" {
		args = append(args, filter.SaleBy)
		whereParts = append(whereParts, fmt.Sprintf("sale_by = $%d", len(args)))
	}
	if filter.PurchasedBy != "" {
		args = append(args, filter.PurchasedBy)
		whereParts = append(whereParts, fmt.Sprintf("purchased_by = $%d", len(args)))
	}
	if len(filter.ExcludeStatus) > 0 {
		excluded := make([]string, 0, len(filter.ExcludeStatus))
		for _, status := range filter.ExcludeStatus {
			excluded = append(excluded, string(status))
		}
		args = append(args, excluded)
		whereParts = append(whereParts, fmt.Sprintf("NOT (status = ANY($%d))", len(args)))
	}
	where := strings.Join(whereParts, " AND ")

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM contracts WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count contracts: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(
		`SELECT %s FROM contracts WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		contractColumns, where, len(args)-1, len(args),
	)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list contracts: %w", err)
	}
	defer rows.Close()

	contracts := []models.Contract{}
	for rows.Next() {
		contract, err := scanContract(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan contract: %w", err)
		}
		contracts = append(contracts, *contract)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list contracts: %w", err)
	}
	return contracts, total, nil
}

func (r *ContractRepository) Update(ctx context.Context, id string, fields ports.ContractFields) (*models.Contract, error) {
	query := `
		UPDATE contracts
		SET kind = COALESCE($2, kind),
			money = COALESCE($3, money),
			credits = COALESCE($4, credits),
			start_date = COALESCE($5, start_date),
			end_date = COALESCE($6, end_date),
			sale_by = COALESCE($7, sale_by),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + contractColumns

	contract, err := scanContract(r.db.QueryRow(
		ctx,
		query,
		id,
		fields.Kind,
		fields.Money,
		fields.Credits,
		fields.StartDate,
		fields.EndDate,
		fields.SaleBy,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("contract")
		}
		return nil, fmt.Errorf("update contract: %w", err)
	}
	return contract, nil
}
