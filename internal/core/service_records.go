package core

import (
	"context"
	"fmt"
	"strings"

	"workledger/pkg/domain"
)

// CreateUser stores a user record. Emails are unique, case-insensitively.
func (s *Service) CreateUser(ctx context.Context, user domain.User) (domain.User, domain.Result, error) {
	var created domain.User
	res, err := s.run(ctx, "create_user", func(tx domain.Transaction) error {
		if user.Email != "" {
			if existing, ok := findUserByEmail(tx.Snapshot(), user.Email); ok {
				return fmt.Errorf("%w: email %q already belongs to user %s", domain.ErrInvalidInput, user.Email, existing.ID)
			}
		}
		var err error
		created, err = tx.CreateUser(user)
		return err
	})
	return created, res, err
}

// FindUserByEmail looks a user up by email, ignoring case.
func (s *Service) FindUserByEmail(ctx context.Context, email string) (domain.User, bool) {
	var (
		user domain.User
		ok   bool
	)
	s.view(ctx, func(v domain.TransactionView) { user, ok = findUserByEmail(v, email) })
	return user, ok
}

func findUserByEmail(v domain.TransactionView, email string) (domain.User, bool) {
	for _, u := range v.ListUsers() {
		if strings.EqualFold(u.Email, email) {
			return u, true
		}
	}
	return domain.User{}, false
}

// AddSupplier attaches a supplier contact to a work.
func (s *Service) AddSupplier(ctx context.Context, supplier domain.Supplier) (domain.Supplier, domain.Result, error) {
	var created domain.Supplier
	res, err := s.run(ctx, "add_supplier", func(tx domain.Transaction) error {
		if _, err := requireWork(tx.Snapshot(), supplier.WorkID); err != nil {
			return err
		}
		var err error
		created, err = tx.CreateSupplier(supplier)
		return err
	})
	return created, res, err
}

// DeleteSupplier removes a supplier.
func (s *Service) DeleteSupplier(ctx context.Context, id string) (domain.Result, error) {
	return s.run(ctx, "delete_supplier", func(tx domain.Transaction) error {
		return tx.DeleteSupplier(id)
	})
}

// AddPhoto stores photo metadata, dated today unless a date is given.
func (s *Service) AddPhoto(ctx context.Context, photo domain.Photo) (domain.Photo, domain.Result, error) {
	if photo.Date.IsZero() {
		photo.Date = s.Today()
	}
	var created domain.Photo
	res, err := s.run(ctx, "add_photo", func(tx domain.Transaction) error {
		if _, err := requireWork(tx.Snapshot(), photo.WorkID); err != nil {
			return err
		}
		var err error
		created, err = tx.CreatePhoto(photo)
		return err
	})
	return created, res, err
}

// DeletePhoto removes photo metadata.
func (s *Service) DeletePhoto(ctx context.Context, id string) (domain.Result, error) {
	return s.run(ctx, "delete_photo", func(tx domain.Transaction) error {
		return tx.DeletePhoto(id)
	})
}

// AddFile stores attachment metadata, dated today unless a date is given.
func (s *Service) AddFile(ctx context.Context, file domain.File) (domain.File, domain.Result, error) {
	if file.Date.IsZero() {
		file.Date = s.Today()
	}
	var created domain.File
	res, err := s.run(ctx, "add_file", func(tx domain.Transaction) error {
		if _, err := requireWork(tx.Snapshot(), file.WorkID); err != nil {
			return err
		}
		var err error
		created, err = tx.CreateFile(file)
		return err
	})
	return created, res, err
}

// DeleteFile removes attachment metadata.
func (s *Service) DeleteFile(ctx context.Context, id string) (domain.Result, error) {
	return s.run(ctx, "delete_file", func(tx domain.Transaction) error {
		return tx.DeleteFile(id)
	})
}

// AddNotification queues an unread notification for a user.
func (s *Service) AddNotification(ctx context.Context, n domain.Notification) (domain.Notification, domain.Result, error) {
	n.Read = false
	if n.Kind == "" {
		n.Kind = domain.NotificationInfo
	}
	var created domain.Notification
	res, err := s.run(ctx, "add_notification", func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateNotification(n)
		return err
	})
	return created, res, err
}

// MarkNotificationRead flags one notification as read.
func (s *Service) MarkNotificationRead(ctx context.Context, id string) (domain.Result, error) {
	return s.run(ctx, "mark_notification_read", func(tx domain.Transaction) error {
		_, err := tx.UpdateNotification(id, func(n *domain.Notification) error {
			n.Read = true
			return nil
		})
		return err
	})
}

// MarkAllNotificationsRead flags every unread notification of a user.
func (s *Service) MarkAllNotificationsRead(ctx context.Context, userID string) (domain.Result, error) {
	return s.run(ctx, "mark_all_notifications_read", func(tx domain.Transaction) error {
		for _, n := range tx.Snapshot().ListNotifications(userID) {
			if n.Read {
				continue
			}
			if _, err := tx.UpdateNotification(n.ID, func(n *domain.Notification) error {
				n.Read = true
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

// ClearNotifications deletes every notification of a user.
func (s *Service) ClearNotifications(ctx context.Context, userID string) (domain.Result, error) {
	return s.run(ctx, "clear_notifications", func(tx domain.Transaction) error {
		for _, n := range tx.Snapshot().ListNotifications(userID) {
			if err := tx.DeleteNotification(n.ID); err != nil {
				return err
			}
		}
		return nil
	})
}
