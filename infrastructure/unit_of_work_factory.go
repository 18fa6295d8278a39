package infrastructure

import (
	"contestbot/application"
	"contestbot/database"
	"contestbot/domain/interfaces"
	"contestbot/repository"
)

// UnitOfWorkFactory creates units of work that queue events until commit
type UnitOfWorkFactory struct {
	repoFactory interface {
		CreateForGuildWithPublisher(guildID int64, publisher interfaces.TransactionalEventPublisher) application.UnitOfWork
	}
	eventPublisher interfaces.EventPublisher
}

// NewUnitOfWorkFactory creates a new UnitOfWorkFactory
func NewUnitOfWorkFactory(db *database.DB, eventPublisher interfaces.EventPublisher) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{
		repoFactory:    repository.NewUnitOfWorkFactory(db),
		eventPublisher: eventPublisher,
	}
}

// CreateForGuild creates a new UnitOfWork with its own transactional publisher
func (f *UnitOfWorkFactory) CreateForGuild(guildID int64) application.UnitOfWork {
	return f.repoFactory.CreateForGuildWithPublisher(guildID, NewNATSTransactionalPublisher(f.eventPublisher))
}
