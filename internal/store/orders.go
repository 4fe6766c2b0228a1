package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/saboru/saboru-backend/internal/database"
	"github.com/saboru/saboru-backend/internal/models"
	"github.com/shopspring/decimal"
)

type PlaceOrderRequest struct {
	UserID          int64
	ProviderID      int64 // optional; inferred from the first dish when 0
	DeliveryAddress string
	ExternalRef     string // optional client idempotency key
	Items           []OrderItemRequest
}

type OrderItemRequest struct {
	DishID   int64
	Quantity int
}

func generateOrderRef() string {
	return fmt.Sprintf("SU-%d", time.Now().UnixNano())
}

// PlaceOrder runs the whole checkout as one retried transaction: price
// lookup, inventory check and decrement, order + item rows, delivery
// queue entry and order event. Either every row lands or none does, and
// the decrement is guarded by `cantidad >= n` so concurrent checkouts
// cannot drive inventory negative.
//
// The returned bool reports whether an order with the same external ref
// already existed, in which case that order is returned unchanged.
func PlaceOrder(ctx context.Context, db *sql.DB, req PlaceOrderRequest) (*models.Order, bool, error) {
	if req.UserID == 0 {
		return nil, false, fmt.Errorf("%w: user id is required", database.ErrValidation)
	}
	if req.DeliveryAddress == "" {
		return nil, false, fmt.Errorf("%w: delivery address is required", database.ErrValidation)
	}
	if len(req.Items) == 0 {
		return nil, false, fmt.Errorf("%w: cart is empty", database.ErrValidation)
	}
	for _, item := range req.Items {
		if item.DishID == 0 || item.Quantity < 1 {
			return nil, false, fmt.Errorf("%w: invalid item (dish=%d, cantidad=%d)",
				database.ErrValidation, item.DishID, item.Quantity)
		}
	}

	var (
		order   *models.Order
		existed bool
	)

	err := database.WithRetry(ctx, db, database.TxOptions{
		IsolationLevel: sql.LevelSerializable,
		MaxRetries:     3,
	}, func(tx *sql.Tx) error {
		order = nil
		existed = false

		if req.ExternalRef != "" {
			var existingID int64
			err := tx.QueryRowContext(ctx,
				`SELECT id FROM orders WHERE external_ref = $1`,
				req.ExternalRef).Scan(&existingID)
			if err == nil {
				existing, ferr := getOrderTx(ctx, tx, existingID)
				if ferr != nil {
					return ferr
				}
				order = existing
				existed = true
				return nil
			}
			if !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("check external ref: %w", err)
			}
		}

		var userExists bool
		err := tx.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)",
			req.UserID).Scan(&userExists)
		if err != nil {
			return fmt.Errorf("check user exists: %w", err)
		}
		if !userExists {
			return database.ErrUserNotFound
		}

		type pricedItem struct {
			providerID int64
			unitPrice  decimal.Decimal
		}

		total := decimal.Zero
		priced := make(map[int64]pricedItem, len(req.Items))
		providerID := req.ProviderID

		for _, item := range req.Items {
			var dishProvider int64
			var price decimal.Decimal

			err := tx.QueryRowContext(ctx,
				`SELECT provider_id, precio FROM dishes WHERE id = $1`,
				item.DishID).Scan(&dishProvider, &price)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return database.ErrDishNotFound
				}
				return fmt.Errorf("fetch dish %d: %w", item.DishID, err)
			}

			itemProvider := providerID
			if itemProvider == 0 {
				itemProvider = dishProvider
			}
			if providerID == 0 {
				providerID = dishProvider
			}

			var quantity int
			err = tx.QueryRowContext(ctx,
				`SELECT cantidad FROM dish_inventory
				 WHERE dish_id = $1 AND provider_id = $2
				 FOR UPDATE`,
				item.DishID, itemProvider).Scan(&quantity)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return database.ErrInsufficientInventory
				}
				return fmt.Errorf("lock inventory for dish %d: %w", item.DishID, err)
			}
			if quantity < item.Quantity {
				return database.ErrInsufficientInventory
			}

			priced[item.DishID] = pricedItem{providerID: itemProvider, unitPrice: price}
			total = total.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}

		orderRef := generateOrderRef()
		var orderID int64
		err = tx.QueryRowContext(ctx,
			`INSERT INTO orders (order_ref, external_ref, user_id, provider_id, status, total, delivery_address, created_at, updated_at)
			 VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, NOW(), NOW())
			 RETURNING id`,
			orderRef, req.ExternalRef, req.UserID, providerID,
			models.OrderStatusPending, total, req.DeliveryAddress).Scan(&orderID)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		for _, item := range req.Items {
			p := priced[item.DishID]
			subtotal := p.unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))

			_, err = tx.ExecContext(ctx,
				`INSERT INTO order_items (order_id, dish_id, cantidad, precio_unitario, subtotal, created_at)
				 VALUES ($1, $2, $3, $4, $5, NOW())`,
				orderID, item.DishID, item.Quantity, p.unitPrice, subtotal)
			if err != nil {
				return fmt.Errorf("create order item: %w", err)
			}
		}

		for _, item := range req.Items {
			p := priced[item.DishID]
			result, err := tx.ExecContext(ctx,
				`UPDATE dish_inventory
				 SET cantidad = cantidad - $1,
				     updated_at = NOW()
				 WHERE dish_id = $2
				   AND provider_id = $3
				   AND cantidad >= $1`,
				item.Quantity, item.DishID, p.providerID)
			if err != nil {
				return fmt.Errorf("decrement inventory: %w", err)
			}

			rowsAffected, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("get rows affected: %w", err)
			}
			if rowsAffected == 0 {
				return database.ErrInsufficientInventory
			}
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO delivery_queue (order_id, estado, fecha_registro)
			 VALUES ($1, $2, NOW())`,
			orderID, models.QueueStatusPending)
		if err != nil {
			return fmt.Errorf("enqueue delivery: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO pedido_eventos (order_id, descripcion, fecha)
			 VALUES ($1, $2, NOW())`,
			orderID, "Pedido creado y pendiente de asignación de ruta.")
		if err != nil {
			return fmt.Errorf("record order event: %w", err)
		}

		order, err = getOrderTx(ctx, tx, orderID)
		return err
	})

	if err != nil {
		return nil, false, err
	}

	return order, existed, nil
}

func getOrderTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Order, error) {
	order := &models.Order{ID: id}

	err := tx.QueryRowContext(ctx,
		`SELECT order_ref, COALESCE(external_ref, ''), user_id, COALESCE(provider_id, 0), status, total, delivery_address, created_at, updated_at
		 FROM orders WHERE id = $1`,
		id).Scan(
		&order.OrderRef,
		&order.ExternalRef,
		&order.UserID,
		&order.ProviderID,
		&order.Status,
		&order.Total,
		&order.DeliveryAddress,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch created order: %w", err)
	}
	return order, nil
}

func GetOrder(ctx context.Context, db *sql.DB, id int64) (*models.Order, error) {
	order := &models.Order{}

	query := `
		SELECT id, order_ref, COALESCE(external_ref, ''), user_id, COALESCE(provider_id, 0), status, total, delivery_address, created_at, updated_at
		FROM orders
		WHERE id = $1`

	err := db.QueryRowContext(ctx, query, id).Scan(
		&order.ID,
		&order.OrderRef,
		&order.ExternalRef,
		&order.UserID,
		&order.ProviderID,
		&order.Status,
		&order.Total,
		&order.DeliveryAddress,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	itemsQuery := `
		SELECT id, order_id, dish_id, cantidad, precio_unitario, subtotal, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY id`

	rows, err := db.QueryContext(ctx, itemsQuery, id)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.DishID,
			&item.Quantity,
			&item.UnitPrice,
			&item.Subtotal,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	order.Items = items

	return order, nil
}

func GetOrderStatus(ctx context.Context, db *sql.DB, id int64) (string, error) {
	var status string
	err := db.QueryRowContext(ctx, `SELECT status FROM orders WHERE id = $1`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", database.ErrOrderNotFound
		}
		return "", fmt.Errorf("get order status: %w", err)
	}
	return status, nil
}

func ListOrdersCursor(ctx context.Context, db *sql.DB, userID int64, cursor string, limit int) (*CursorPage, error) {
	cursorData, err := DecodeCursor(cursor)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}

	query := `
		SELECT id, order_ref, user_id, COALESCE(provider_id, 0), status, total, delivery_address, created_at, updated_at
		FROM orders
		WHERE user_id = $1
		  AND (created_at, id) < ($2, $3)
		ORDER BY created_at DESC, id DESC
		LIMIT $4`

	rows, err := db.QueryContext(ctx, query, userID, cursorData.CreatedAt, cursorData.ID, limit+1)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var order models.Order
		err := rows.Scan(
			&order.ID,
			&order.OrderRef,
			&order.UserID,
			&order.ProviderID,
			&order.Status,
			&order.Total,
			&order.DeliveryAddress,
			&order.CreatedAt,
			&order.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	hasMore := len(orders) > limit
	if hasMore {
		orders = orders[:limit]
	}

	var nextCursor string
	if hasMore && len(orders) > 0 {
		lastOrder := orders[len(orders)-1]
		nextCursor = EncodeCursor(OrderCursor{
			CreatedAt: lastOrder.CreatedAt,
			ID:        lastOrder.ID,
		})
	}

	return &CursorPage{
		Items:      orders,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

func AppendOrderEvent(ctx context.Context, db *sql.DB, orderID int64, description string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO pedido_eventos (order_id, descripcion, fecha)
		 VALUES ($1, $2, NOW())`,
		orderID, description)
	if err != nil {
		return fmt.Errorf("append order event: %w", err)
	}
	return nil
}

func ListOrderEvents(ctx context.Context, db *sql.DB, orderID int64) ([]models.OrderEvent, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, order_id, descripcion, fecha
		 FROM pedido_eventos
		 WHERE order_id = $1
		 ORDER BY fecha, id`,
		orderID)
	if err != nil {
		return nil, fmt.Errorf("list order events: %w", err)
	}
	defer rows.Close()

	var events []models.OrderEvent
	for rows.Next() {
		var event models.OrderEvent
		if err := rows.Scan(&event.ID, &event.OrderID, &event.Description, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order event: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return events, nil
}

func SaveOrderQR(ctx context.Context, db *sql.DB, orderID int64, png []byte) error {
	result, err := db.ExecContext(ctx,
		`UPDATE orders SET qr_png = $1, updated_at = NOW() WHERE id = $2`,
		png, orderID)
	if err != nil {
		return fmt.Errorf("save order qr: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrOrderNotFound
	}
	return nil
}

func GetOrderQR(ctx context.Context, db *sql.DB, orderID int64) ([]byte, error) {
	var png []byte
	err := db.QueryRowContext(ctx,
		`SELECT qr_png FROM orders WHERE id = $1`, orderID).Scan(&png)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order qr: %w", err)
	}
	if len(png) == 0 {
		return nil, database.ErrOrderNotFound
	}
	return png, nil
}
