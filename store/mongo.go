package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tableorder-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	menuCollection    = "menu_items"
	orderCollection   = "orders"
	managerCollection = "managers"
)

// MongoStore keeps one document per menu item, order and manager. Order
// line items are embedded in the order document. WithTx needs a replica
// set deployment.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{client: client, db: client.Database(database)}
}

// EnsureIndexes creates the unique and sort indexes the store relies on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		managerCollection: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		menuCollection: {
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}}},
		},
		orderCollection: {
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "table_number", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}
	for name, specs := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, specs); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// ErrNoTransactions means the deployment is a standalone server, which
// cannot run the multi-document transactions WithTx relies on.
var ErrNoTransactions = errors.New("mongo deployment does not support transactions; use a replica set or sharded cluster")

type helloResult struct {
	SetName string `bson:"setName"`
	Msg     string `bson:"msg"`
}

// supportsTransactions is true for replica set members and mongos routers.
func (h helloResult) supportsTransactions() bool {
	return h.SetName != "" || h.Msg == "isdbgrid"
}

// CheckTransactions asks the server what it is and returns
// ErrNoTransactions for a standalone deployment.
func (s *MongoStore) CheckTransactions(ctx context.Context) error {
	var hello helloResult
	if err := s.db.RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&hello); err != nil {
		return fmt.Errorf("run hello: %w", err)
	}
	if !hello.supportsTransactions() {
		return ErrNoTransactions
	}
	return nil
}

func (s *MongoStore) Menu() MenuRepository {
	return mongoMenu{s.db.Collection(menuCollection)}
}

func (s *MongoStore) Orders() OrderRepository {
	return mongoOrders{s.db.Collection(orderCollection)}
}

func (s *MongoStore) Managers() ManagerRepository {
	return mongoManagers{s.db.Collection(managerCollection)}
}

func (s *MongoStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, s)
	})
	return err
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func translateMongoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	default:
		return err
	}
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	return primitive.ParseDecimal128(d.String())
}

func fromDecimal128(d primitive.Decimal128) (decimal.Decimal, error) {
	return decimal.NewFromString(d.String())
}

type menuItemDocument struct {
	ID              string               `bson:"_id"`
	Name            string               `bson:"name"`
	Description     string               `bson:"description"`
	Price           primitive.Decimal128 `bson:"price"`
	Category        string               `bson:"category"`
	Image           string               `bson:"image"`
	Available       bool                 `bson:"available"`
	PreparationTime int                  `bson:"preparation_time"`
	CreatedAt       time.Time            `bson:"created_at"`
	UpdatedAt       time.Time            `bson:"updated_at"`
}

func newMenuItemDocument(item *models.MenuItem) (menuItemDocument, error) {
	price, err := toDecimal128(item.Price)
	if err != nil {
		return menuItemDocument{}, fmt.Errorf("encode price: %w", err)
	}
	return menuItemDocument{
		ID:              item.ID.String(),
		Name:            item.Name,
		Description:     item.Description,
		Price:           price,
		Category:        string(item.Category),
		Image:           item.Image,
		Available:       item.Available,
		PreparationTime: item.PreparationTime,
		CreatedAt:       item.CreatedAt,
		UpdatedAt:       item.UpdatedAt,
	}, nil
}

func (d menuItemDocument) model() (models.MenuItem, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return models.MenuItem{}, fmt.Errorf("decode menu item id %q: %w", d.ID, err)
	}
	price, err := fromDecimal128(d.Price)
	if err != nil {
		return models.MenuItem{}, fmt.Errorf("decode price of %s: %w", d.ID, err)
	}
	return models.MenuItem{
		ID:              id,
		Name:            d.Name,
		Description:     d.Description,
		Price:           price,
		Category:        models.Category(d.Category),
		Image:           d.Image,
		Available:       d.Available,
		PreparationTime: d.PreparationTime,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}, nil
}

type mongoMenu struct{ c *mongo.Collection }

func (r mongoMenu) Create(ctx context.Context, item *models.MenuItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	now := time.Now().UTC()
	item.CreatedAt, item.UpdatedAt = now, now

	doc, err := newMenuItemDocument(item)
	if err != nil {
		return err
	}
	_, err = r.c.InsertOne(ctx, doc)
	return translateMongoError(err)
}

func (r mongoMenu) Get(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	var doc menuItemDocument
	if err := r.c.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		return nil, translateMongoError(err)
	}
	item, err := doc.model()
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r mongoMenu) GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.MenuItem, error) {
	found := make(map[uuid.UUID]models.MenuItem, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, id.String())
	}

	items, err := r.find(ctx, bson.M{"_id": bson.M{"$in": keys}})
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		found[item.ID] = item
	}
	return found, nil
}

func (r mongoMenu) List(ctx context.Context, filter MenuFilter) ([]models.MenuItem, error) {
	query := bson.M{}
	if filter.AvailableOnly {
		query["available"] = true
	}
	if filter.Category != "" {
		query["category"] = string(filter.Category)
	}
	opts := options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}})
	return r.find(ctx, query, opts)
}

func (r mongoMenu) find(ctx context.Context, query bson.M, opts ...*options.FindOptions) ([]models.MenuItem, error) {
	cursor, err := r.c.Find(ctx, query, opts...)
	if err != nil {
		return nil, translateMongoError(err)
	}

	var docs []menuItemDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, translateMongoError(err)
	}
	items := make([]models.MenuItem, 0, len(docs))
	for _, doc := range docs {
		item, err := doc.model()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (r mongoMenu) Update(ctx context.Context, item *models.MenuItem) error {
	price, err := toDecimal128(item.Price)
	if err != nil {
		return fmt.Errorf("encode price: %w", err)
	}
	item.UpdatedAt = time.Now().UTC()

	result, err := r.c.UpdateOne(ctx, bson.M{"_id": item.ID.String()}, bson.M{"$set": bson.M{
		"name":             item.Name,
		"description":      item.Description,
		"price":            price,
		"category":         string(item.Category),
		"image":            item.Image,
		"available":        item.Available,
		"preparation_time": item.PreparationTime,
		"updated_at":       item.UpdatedAt,
	}})
	if err != nil {
		return translateMongoError(err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r mongoMenu) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.c.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return translateMongoError(err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

type orderItemDocument struct {
	ID         string               `bson:"id"`
	MenuItemID string               `bson:"menu_item_id"`
	Name       string               `bson:"name"`
	Quantity   int                  `bson:"quantity"`
	Price      primitive.Decimal128 `bson:"price"`
}

type orderDocument struct {
	ID                  string               `bson:"_id"`
	TableNumber         int                  `bson:"table_number"`
	Items               []orderItemDocument  `bson:"items"`
	TotalAmount         primitive.Decimal128 `bson:"total_amount"`
	Status              string               `bson:"status"`
	CustomerName        string               `bson:"customer_name,omitempty"`
	CustomerPhone       string               `bson:"customer_phone,omitempty"`
	SpecialInstructions string               `bson:"special_instructions,omitempty"`
	EstimatedTime       int                  `bson:"estimated_time"`
	CreatedAt           time.Time            `bson:"created_at"`
	UpdatedAt           time.Time            `bson:"updated_at"`
}

func newOrderDocument(order *models.Order) (orderDocument, error) {
	total, err := toDecimal128(order.TotalAmount)
	if err != nil {
		return orderDocument{}, fmt.Errorf("encode total: %w", err)
	}
	doc := orderDocument{
		ID:                  order.ID.String(),
		TableNumber:         order.TableNumber,
		Items:               make([]orderItemDocument, 0, len(order.Items)),
		TotalAmount:         total,
		Status:              string(order.Status),
		CustomerName:        order.CustomerName,
		CustomerPhone:       order.CustomerPhone,
		SpecialInstructions: order.SpecialInstructions,
		EstimatedTime:       order.EstimatedTime,
		CreatedAt:           order.CreatedAt,
		UpdatedAt:           order.UpdatedAt,
	}
	for _, item := range order.Items {
		price, err := toDecimal128(item.Price)
		if err != nil {
			return orderDocument{}, fmt.Errorf("encode line price: %w", err)
		}
		doc.Items = append(doc.Items, orderItemDocument{
			ID:         item.ID.String(),
			MenuItemID: item.MenuItemID.String(),
			Name:       item.Name,
			Quantity:   item.Quantity,
			Price:      price,
		})
	}
	return doc, nil
}

func (d orderDocument) model() (models.Order, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return models.Order{}, fmt.Errorf("decode order id %q: %w", d.ID, err)
	}
	total, err := fromDecimal128(d.TotalAmount)
	if err != nil {
		return models.Order{}, fmt.Errorf("decode total of %s: %w", d.ID, err)
	}
	order := models.Order{
		ID:                  id,
		TableNumber:         d.TableNumber,
		Items:               make([]models.OrderItem, 0, len(d.Items)),
		TotalAmount:         total,
		Status:              models.OrderStatus(d.Status),
		CustomerName:        d.CustomerName,
		CustomerPhone:       d.CustomerPhone,
		SpecialInstructions: d.SpecialInstructions,
		EstimatedTime:       d.EstimatedTime,
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
	}
	for i, line := range d.Items {
		lineID, _ := uuid.Parse(line.ID)
		menuItemID, err := uuid.Parse(line.MenuItemID)
		if err != nil {
			return models.Order{}, fmt.Errorf("decode menu reference of %s: %w", d.ID, err)
		}
		price, err := fromDecimal128(line.Price)
		if err != nil {
			return models.Order{}, fmt.Errorf("decode line price of %s: %w", d.ID, err)
		}
		order.Items = append(order.Items, models.OrderItem{
			ID:         lineID,
			OrderID:    id,
			Position:   i,
			MenuItemID: menuItemID,
			Name:       line.Name,
			Quantity:   line.Quantity,
			Price:      price,
		})
	}
	return order, nil
}

type mongoOrders struct{ c *mongo.Collection }

func (r mongoOrders) Create(ctx context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		order.Items[i].Position = i
		if order.Items[i].ID == uuid.Nil {
			order.Items[i].ID = uuid.New()
		}
	}
	now := time.Now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now

	doc, err := newOrderDocument(order)
	if err != nil {
		return err
	}
	_, err = r.c.InsertOne(ctx, doc)
	return translateMongoError(err)
}

func (r mongoOrders) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var doc orderDocument
	if err := r.c.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		return nil, translateMongoError(err)
	}
	order, err := doc.model()
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r mongoOrders) List(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	query := bson.M{}
	if filter.TableNumber != 0 {
		query["table_number"] = filter.TableNumber
	}
	cursor, err := r.c.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, translateMongoError(err)
	}

	var docs []orderDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, translateMongoError(err)
	}
	orders := make([]models.Order, 0, len(docs))
	for _, doc := range docs {
		order, err := doc.model()
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (r mongoOrders) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.OrderStatus) error {
	result, err := r.c.UpdateOne(ctx,
		bson.M{"_id": id.String(), "status": string(from)},
		bson.M{"$set": bson.M{"status": string(to), "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return translateMongoError(err)
	}
	if result.MatchedCount > 0 {
		return nil
	}

	count, err := r.c.CountDocuments(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("check order %s: %w", id, err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrStatusChanged
}

type managerDocument struct {
	ID        string     `bson:"_id"`
	Username  string     `bson:"username"`
	Email     string     `bson:"email"`
	Password  string     `bson:"password"`
	Role      string     `bson:"role"`
	LastLogin *time.Time `bson:"last_login,omitempty"`
	CreatedAt time.Time  `bson:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at"`
}

func (d managerDocument) model() (models.Manager, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return models.Manager{}, fmt.Errorf("decode manager id %q: %w", d.ID, err)
	}
	return models.Manager{
		ID:        id,
		Username:  d.Username,
		Email:     d.Email,
		Password:  d.Password,
		Role:      d.Role,
		LastLogin: d.LastLogin,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

type mongoManagers struct{ c *mongo.Collection }

func (r mongoManagers) Create(ctx context.Context, manager *models.Manager) error {
	if manager.ID == uuid.Nil {
		manager.ID = uuid.New()
	}
	now := time.Now().UTC()
	manager.CreatedAt, manager.UpdatedAt = now, now

	_, err := r.c.InsertOne(ctx, managerDocument{
		ID:        manager.ID.String(),
		Username:  manager.Username,
		Email:     manager.Email,
		Password:  manager.Password,
		Role:      manager.Role,
		LastLogin: manager.LastLogin,
		CreatedAt: manager.CreatedAt,
		UpdatedAt: manager.UpdatedAt,
	})
	return translateMongoError(err)
}

func (r mongoManagers) findOne(ctx context.Context, query bson.M) (*models.Manager, error) {
	var doc managerDocument
	if err := r.c.FindOne(ctx, query).Decode(&doc); err != nil {
		return nil, translateMongoError(err)
	}
	manager, err := doc.model()
	if err != nil {
		return nil, err
	}
	return &manager, nil
}

func (r mongoManagers) Get(ctx context.Context, id uuid.UUID) (*models.Manager, error) {
	return r.findOne(ctx, bson.M{"_id": id.String()})
}

func (r mongoManagers) GetByUsername(ctx context.Context, username string) (*models.Manager, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r mongoManagers) Exists(ctx context.Context, username, email string) (bool, error) {
	count, err := r.c.CountDocuments(ctx, bson.M{"$or": bson.A{
		bson.M{"username": username},
		bson.M{"email": email},
	}})
	if err != nil {
		return false, translateMongoError(err)
	}
	return count > 0, nil
}

func (r mongoManagers) TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	result, err := r.c.UpdateOne(ctx, bson.M{"_id": id.String()}, bson.M{"$set": bson.M{"last_login": at}})
	if err != nil {
		return translateMongoError(err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
