package rest

import (
	"context"
	"net/http"

	"lending/core"
	"lending/handler/param"
	"lending/handler/render"
)

type amountParams struct {
	Reserve string `json:"reserve" valid:"required"`
	Amount  uint64 `json:"amount"`
}

func depositHandler(operations core.IOperationService, lendings core.ILendingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params amountParams
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		execute(w, r, operations, []string{params.Reserve}, func(ctx context.Context, l *core.Ledger) error {
			reserve, err := l.Reserve(params.Reserve)
			if err != nil {
				return err
			}

			return lendings.Deposit(ctx, l.Position, reserve, params.Amount, l.Now)
		})
	}
}

func withdrawHandler(operations core.IOperationService, lendings core.ILendingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params amountParams
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		execute(w, r, operations, []string{params.Reserve}, func(ctx context.Context, l *core.Ledger) error {
			reserve, err := l.Reserve(params.Reserve)
			if err != nil {
				return err
			}

			snapshot, err := l.Snapshot()
			if err != nil {
				return err
			}

			return lendings.Withdraw(ctx, l.Position, reserve, params.Amount, snapshot, l.Now)
		})
	}
}

func borrowHandler(operations core.IOperationService, lendings core.ILendingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params amountParams
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		execute(w, r, operations, []string{params.Reserve}, func(ctx context.Context, l *core.Ledger) error {
			reserve, err := l.Reserve(params.Reserve)
			if err != nil {
				return err
			}

			snapshot, err := l.Snapshot()
			if err != nil {
				return err
			}

			return lendings.Borrow(ctx, l.Position, reserve, params.Amount, snapshot, l.Now)
		})
	}
}

func repayHandler(operations core.IOperationService, lendings core.ILendingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params amountParams
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		execute(w, r, operations, []string{params.Reserve}, func(ctx context.Context, l *core.Ledger) error {
			reserve, err := l.Reserve(params.Reserve)
			if err != nil {
				return err
			}

			snapshot, err := l.Snapshot()
			if err != nil {
				return err
			}

			_, err = lendings.Repay(ctx, l.Position, reserve, params.Amount, snapshot, l.Now)
			return err
		})
	}
}

func claimHandler(operations core.IOperationService, lendings core.ILendingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Reserve  string `json:"reserve" valid:"required"`
			Reinvest bool   `json:"reinvest"`
		}

		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		execute(w, r, operations, []string{params.Reserve}, func(ctx context.Context, l *core.Ledger) error {
			reserve, err := l.Reserve(params.Reserve)
			if err != nil {
				return err
			}

			_, err = lendings.ClaimYield(ctx, l.Position, reserve, params.Reinvest, l.Now)
			return err
		})
	}
}

func lendHandler(operations core.IOperationService, lendings core.ILendingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Reserve string `json:"reserve" valid:"required"`
		}

		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		execute(w, r, operations, []string{params.Reserve}, func(ctx context.Context, l *core.Ledger) error {
			reserve, err := l.Reserve(params.Reserve)
			if err != nil {
				return err
			}

			return lendings.EnableLending(ctx, l.Position, reserve, l.Now)
		})
	}
}
