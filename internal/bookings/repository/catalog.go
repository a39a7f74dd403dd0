package repository

import (
	"context"
	"errors"
	"fmt"
	bookingserrors "staybook/internal/bookings/errors"
	hotelserrors "staybook/internal/hotels/errors"
	hotelsrepo "staybook/internal/hotels/repository"
	roomserrors "staybook/internal/rooms/errors"
	roomsrepo "staybook/internal/rooms/repository"
	"staybook/pkg/model"
)

// Catalog gives the bookings domain read access to rooms and hotels, with
// lookup failures expressed as bookings sentinels.
type Catalog struct {
	rooms  roomsrepo.RoomRepository
	hotels hotelsrepo.HotelRepository
}

func NewCatalog(rooms roomsrepo.RoomRepository, hotels hotelsrepo.HotelRepository) *Catalog {
	return &Catalog{rooms: rooms, hotels: hotels}
}

func (c *Catalog) FindRoom(ctx context.Context, id string) (*model.Room, error) {
	room, err := c.rooms.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, roomserrors.ErrNotFound) || errors.Is(err, roomserrors.ErrInvalidID) {
			return nil, fmt.Errorf("%w: %s", bookingserrors.ErrRoomNotFound, id)
		}
		return nil, err
	}
	return room, nil
}

func (c *Catalog) FindHotel(ctx context.Context, id string) (*model.Hotel, error) {
	hotel, err := c.hotels.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, hotelserrors.ErrNotFound) || errors.Is(err, hotelserrors.ErrInvalidID) {
			return nil, fmt.Errorf("%w: %s", bookingserrors.ErrHotelNotFound, id)
		}
		return nil, err
	}
	return hotel, nil
}

func (c *Catalog) FindHotelByOwner(ctx context.Context, ownerID string) (*model.Hotel, error) {
	hotel, err := c.hotels.FindByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, hotelserrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: owner %s", bookingserrors.ErrHotelNotFound, ownerID)
		}
		return nil, err
	}
	return hotel, nil
}

func (c *Catalog) FindRoomsByIDs(ctx context.Context, ids []string) ([]*model.Room, error) {
	return c.rooms.FindByIDs(ctx, ids)
}

func (c *Catalog) FindHotelsByIDs(ctx context.Context, ids []string) ([]*model.Hotel, error) {
	return c.hotels.FindByIDs(ctx, ids)
}
