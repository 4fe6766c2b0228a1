package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/saboru/saboru-backend/internal/database"
	"github.com/saboru/saboru-backend/internal/models"
	"github.com/saboru/saboru-backend/internal/routing"
)

func CreateRoute(ctx context.Context, db *sql.DB, date time.Time, capacity int, vehicle, driver string) (*models.DeliveryRoute, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: route capacity must be at least 1", database.ErrValidation)
	}

	route := &models.DeliveryRoute{}

	query := `
		INSERT INTO delivery_routes (fecha, capacidad, vehiculo, conductor)
		VALUES ($1, $2, $3, $4)
		RETURNING id, fecha, capacidad, vehiculo, conductor`

	err := db.QueryRowContext(ctx, query, date, capacity, vehicle, driver).Scan(
		&route.ID,
		&route.Date,
		&route.Capacity,
		&route.Vehicle,
		&route.Driver,
	)
	if err != nil {
		return nil, fmt.Errorf("create route: %w", err)
	}

	return route, nil
}

func ListRoutes(ctx context.Context, db *sql.DB) ([]models.DeliveryRoute, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, fecha, capacidad, vehiculo, conductor
		 FROM delivery_routes
		 ORDER BY fecha DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	defer rows.Close()

	var routes []models.DeliveryRoute
	for rows.Next() {
		var route models.DeliveryRoute
		if err := rows.Scan(&route.ID, &route.Date, &route.Capacity, &route.Vehicle, &route.Driver); err != nil {
			return nil, fmt.Errorf("scan route: %w", err)
		}
		routes = append(routes, route)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return routes, nil
}

func GetQueueEntry(ctx context.Context, db *sql.DB, orderID int64) (*models.DeliveryQueueEntry, error) {
	entry := &models.DeliveryQueueEntry{}

	err := db.QueryRowContext(ctx,
		`SELECT id, order_id, estado, fecha_registro
		 FROM delivery_queue
		 WHERE order_id = $1`,
		orderID).Scan(&entry.ID, &entry.OrderID, &entry.Status, &entry.RegisteredAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get queue entry: %w", err)
	}

	return entry, nil
}

type AssignmentResult struct {
	RouteID          int64          `json:"route_id"`
	Assigned         int            `json:"assigned"`
	AlreadyAssigned  int            `json:"already_assigned"`
	Stops            []routing.Stop `json:"stops"`
	AssignedOrderIDs []int64        `json:"assigned_order_ids"`
}

// AssignRoute attaches the day's still-queued orders to the given route.
// Stops are visited in the planner's alphabetical order. The insert is
// idempotent per (route_id, order_id) via the unique constraint, so
// re-running the assignment never duplicates rows; orders already on the
// route are counted and skipped. Queue entries of newly assigned orders
// flip to "asignado" and each gets an order event.
func AssignRoute(ctx context.Context, db *sql.DB, routeID int64, day time.Time) (*AssignmentResult, error) {
	var routeExists bool
	err := db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM delivery_routes WHERE id = $1)",
		routeID).Scan(&routeExists)
	if err != nil {
		return nil, fmt.Errorf("check route exists: %w", err)
	}
	if !routeExists {
		return nil, database.ErrRouteNotFound
	}

	stops, err := listAssignableStops(ctx, db, day)
	if err != nil {
		return nil, err
	}

	result := &AssignmentResult{
		RouteID: routeID,
		Stops:   routing.PlanRoute(stops),
	}

	err = database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		for _, stop := range result.Stops {
			res, err := tx.ExecContext(ctx,
				`INSERT INTO delivery_route_items (route_id, order_id, pickup_location, dropoff_location, scheduled_time)
				 VALUES ($1, $2, $3, $4, $5)
				 ON CONFLICT (route_id, order_id) DO NOTHING`,
				routeID, stop.OrderID, stop.PickupLocation, stop.DropoffLocation, stop.ScheduledTime)
			if err != nil {
				return fmt.Errorf("insert route item for order %d: %w", stop.OrderID, err)
			}

			rowsAffected, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("get rows affected: %w", err)
			}
			if rowsAffected == 0 {
				result.AlreadyAssigned++
				continue
			}

			_, err = tx.ExecContext(ctx,
				`UPDATE delivery_queue SET estado = $1 WHERE order_id = $2`,
				models.QueueStatusAssigned, stop.OrderID)
			if err != nil {
				return fmt.Errorf("mark queue entry assigned: %w", err)
			}

			_, err = tx.ExecContext(ctx,
				`INSERT INTO pedido_eventos (order_id, descripcion, fecha)
				 VALUES ($1, $2, NOW())`,
				stop.OrderID, fmt.Sprintf("Pedido asignado a la ruta %d.", routeID))
			if err != nil {
				return fmt.Errorf("record assignment event: %w", err)
			}

			result.Assigned++
			result.AssignedOrderIDs = append(result.AssignedOrderIDs, stop.OrderID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// listAssignableStops loads the day's queued orders with the addresses
// needed for planning: pickup is the provider's business name, dropoff
// the order's delivery address, and the sort key is the customer's home
// address falling back to the provider's address.
func listAssignableStops(ctx context.Context, db *sql.DB, day time.Time) ([]routing.Stop, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	query := `
		SELECT o.id,
		       COALESCE(p.nombre_emprendimiento, 'Proveedor'),
		       o.delivery_address,
		       COALESCE(NULLIF(u.direccion_habitacion, ''), NULLIF(p.direccion, ''), 'Ubicación no registrada'),
		       o.created_at
		FROM orders o
		JOIN delivery_queue q ON q.order_id = o.id
		JOIN users u ON u.id = o.user_id
		LEFT JOIN providers p ON p.id = o.provider_id
		WHERE o.created_at >= $1 AND o.created_at < $2
		ORDER BY o.id`

	rows, err := db.QueryContext(ctx, query, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("list assignable orders: %w", err)
	}
	defer rows.Close()

	var stops []routing.Stop
	for rows.Next() {
		var stop routing.Stop
		err := rows.Scan(
			&stop.OrderID,
			&stop.PickupLocation,
			&stop.DropoffLocation,
			&stop.SortLocation,
			&stop.ScheduledTime,
		)
		if err != nil {
			return nil, fmt.Errorf("scan assignable order: %w", err)
		}
		stops = append(stops, stop)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return stops, nil
}

func ListRouteItems(ctx context.Context, db *sql.DB, routeID int64) ([]models.RouteItem, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, route_id, order_id, pickup_location, dropoff_location, scheduled_time
		 FROM delivery_route_items
		 WHERE route_id = $1
		 ORDER BY pickup_location, order_id`,
		routeID)
	if err != nil {
		return nil, fmt.Errorf("list route items: %w", err)
	}
	defer rows.Close()

	var items []models.RouteItem
	for rows.Next() {
		var item models.RouteItem
		err := rows.Scan(
			&item.ID,
			&item.RouteID,
			&item.OrderID,
			&item.PickupLocation,
			&item.DropoffLocation,
			&item.ScheduledTime,
		)
		if err != nil {
			return nil, fmt.Errorf("scan route item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}
