package internal

import (
	"context"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"emobility/entity"
	"emobility/internal/config"
)

const (
	collectionLog           = "sys_log"
	collectionUserTags      = "user_tags"
	collectionStations      = "charging_stations"
	collectionTransactions  = "transactions"
	collectionMeterValues   = "meter_values"
	collectionConsumptions  = "consumptions"
	collectionSiteAreas     = "site_areas"
	collectionSubscriptions = "subscriptions"
)

type MongoDB struct {
	ctx           context.Context
	clientOptions *options.ClientOptions
	database      string
}

func NewMongoClient(conf *config.Config) (*MongoDB, error) {
	if !conf.Mongo.Enabled {
		return nil, nil
	}
	connectionUri := fmt.Sprintf("mongodb://%s:%s", conf.Mongo.Host, conf.Mongo.Port)
	clientOptions := options.Client().ApplyURI(connectionUri)
	if conf.Mongo.User != "" {
		clientOptions.SetAuth(options.Credential{
			Username:   conf.Mongo.User,
			Password:   conf.Mongo.Password,
			AuthSource: conf.Mongo.Database,
		})
	}
	client := &MongoDB{
		ctx:           context.Background(),
		clientOptions: clientOptions,
		database:      conf.Mongo.Database,
	}
	return client, nil
}

func (m *MongoDB) connect() (*mongo.Client, error) {
	connection, err := mongo.Connect(m.ctx, m.clientOptions)
	if err != nil {
		return nil, err
	}
	return connection, nil
}

func (m *MongoDB) disconnect(connection *mongo.Client) {
	err := connection.Disconnect(m.ctx)
	if err != nil {
		log.Println("mongodb disconnect error;", err)
	}
}

func (m *MongoDB) WriteLogMessage(data Data) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)
	collection := connection.Database(m.database).Collection(collectionLog)
	_, err = collection.InsertOne(m.ctx, data)
	return err
}

func (m *MongoDB) ReadLog(tenantId string) (interface{}, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	var logMessages []FeatureLogMessage
	collection := connection.Database(m.database).Collection(collectionLog)
	filter := bson.D{}
	if tenantId != "" {
		filter = bson.D{{Key: "tenant_id", Value: tenantId}}
	}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}).SetLimit(1000)
	cursor, err := collection.Find(m.ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	if err = cursor.All(m.ctx, &logMessages); err != nil {
		return nil, err
	}
	return logMessages, nil
}

func (m *MongoDB) GetChargingStation(tenantId, id string) (*entity.ChargingStation, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	filter := bson.D{{Key: "tenant_id", Value: tenantId}, {Key: "charge_box_id", Value: id}}
	collection := connection.Database(m.database).Collection(collectionStations)
	var station entity.ChargingStation
	err = collection.FindOne(m.ctx, filter).Decode(&station)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &station, nil
}

func (m *MongoDB) GetChargingStations(tenantId string) ([]entity.ChargingStation, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	var stations []entity.ChargingStation
	collection := connection.Database(m.database).Collection(collectionStations)
	cursor, err := collection.Find(m.ctx, bson.D{{Key: "tenant_id", Value: tenantId}})
	if err != nil {
		return nil, err
	}
	if err = cursor.All(m.ctx, &stations); err != nil {
		return nil, err
	}
	return stations, nil
}

func (m *MongoDB) AddChargingStation(station *entity.ChargingStation) error {
	existing, _ := m.GetChargingStation(station.TenantId, station.Id)
	if existing != nil {
		return fmt.Errorf("charging station with id %s already exists", station.Id)
	}

	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionStations)
	_, err = collection.InsertOne(m.ctx, station)
	return err
}

func (m *MongoDB) UpdateChargingStation(station *entity.ChargingStation) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	filter := bson.D{{Key: "tenant_id", Value: station.TenantId}, {Key: "charge_box_id", Value: station.Id}}
	update := bson.M{"$set": station}
	collection := connection.Database(m.database).Collection(collectionStations)
	_, err = collection.UpdateOne(m.ctx, filter, update)
	return err
}

func (m *MongoDB) GetTransaction(tenantId string, id int) (*entity.Transaction, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	filter := bson.D{{Key: "tenant_id", Value: tenantId}, {Key: "transaction_id", Value: id}}
	collection := connection.Database(m.database).Collection(collectionTransactions)
	var transaction entity.Transaction
	err = collection.FindOne(m.ctx, filter).Decode(&transaction)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &transaction, nil
}

func (m *MongoDB) GetLastTransaction() (*entity.Transaction, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionTransactions)
	opts := options.FindOne().SetSort(bson.D{{Key: "transaction_id", Value: -1}})
	var transaction entity.Transaction
	err = collection.FindOne(m.ctx, bson.D{}, opts).Decode(&transaction)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &transaction, nil
}

func (m *MongoDB) GetActiveTransaction(tenantId, chargeBoxId string, connectorId int) (*entity.Transaction, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	filter := bson.D{
		{Key: "tenant_id", Value: tenantId},
		{Key: "charge_box_id", Value: chargeBoxId},
		{Key: "connector_id", Value: connectorId},
		{Key: "stop", Value: nil},
	}
	collection := connection.Database(m.database).Collection(collectionTransactions)
	opts := options.FindOne().SetSort(bson.D{{Key: "transaction_id", Value: -1}})
	var transaction entity.Transaction
	err = collection.FindOne(m.ctx, filter, opts).Decode(&transaction)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &transaction, nil
}

func (m *MongoDB) GetActiveTransactions(tenantId, chargeBoxId string) ([]entity.Transaction, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	filter := bson.D{
		{Key: "tenant_id", Value: tenantId},
		{Key: "charge_box_id", Value: chargeBoxId},
		{Key: "stop", Value: nil},
	}
	collection := connection.Database(m.database).Collection(collectionTransactions)
	cursor, err := collection.Find(m.ctx, filter)
	if err != nil {
		return nil, err
	}
	var transactions []entity.Transaction
	if err = cursor.All(m.ctx, &transactions); err != nil {
		return nil, err
	}
	return transactions, nil
}

func (m *MongoDB) AddTransaction(transaction *entity.Transaction) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionTransactions)
	_, err = collection.InsertOne(m.ctx, transaction)
	return err
}

func (m *MongoDB) UpdateTransaction(transaction *entity.Transaction) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	filter := bson.D{{Key: "tenant_id", Value: transaction.TenantId}, {Key: "transaction_id", Value: transaction.Id}}
	update := bson.M{"$set": transaction}
	collection := connection.Database(m.database).Collection(collectionTransactions)
	_, err = collection.UpdateOne(m.ctx, filter, update)
	return err
}

func (m *MongoDB) AddMeterValue(value *entity.MeterValue) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionMeterValues)
	_, err = collection.InsertOne(m.ctx, value)
	return err
}

func (m *MongoDB) AddConsumption(consumption *entity.Consumption) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionConsumptions)
	_, err = collection.InsertOne(m.ctx, consumption)
	return err
}

func (m *MongoDB) GetUserTag(tenantId, idTag string) (*entity.UserTag, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	filter := bson.D{{Key: "tenant_id", Value: tenantId}, {Key: "id_tag", Value: idTag}}
	collection := connection.Database(m.database).Collection(collectionUserTags)
	var userTag entity.UserTag
	err = collection.FindOne(m.ctx, filter).Decode(&userTag)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &userTag, nil
}

func (m *MongoDB) AddUserTag(userTag *entity.UserTag) error {
	existing, _ := m.GetUserTag(userTag.TenantId, userTag.IdTag)
	if existing != nil {
		return fmt.Errorf("ID tag %s is already registered", existing.IdTag)
	}
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionUserTags)
	_, err = collection.InsertOne(m.ctx, userTag)
	return err
}

func (m *MongoDB) UpdateUserTag(userTag *entity.UserTag) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	filter := bson.D{{Key: "tenant_id", Value: userTag.TenantId}, {Key: "id_tag", Value: userTag.IdTag}}
	update := bson.M{"$set": userTag}
	collection := connection.Database(m.database).Collection(collectionUserTags)
	_, err = collection.UpdateOne(m.ctx, filter, update)
	return err
}

func (m *MongoDB) GetSiteArea(tenantId, id string) (*entity.SiteArea, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	filter := bson.D{{Key: "tenant_id", Value: tenantId}, {Key: "site_area_id", Value: id}}
	collection := connection.Database(m.database).Collection(collectionSiteAreas)
	var siteArea entity.SiteArea
	err = collection.FindOne(m.ctx, filter).Decode(&siteArea)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &siteArea, nil
}

// GetSubscriptions returns all event subscriptions
func (m *MongoDB) GetSubscriptions() ([]entity.UserSubscription, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionSubscriptions)
	cursor, err := collection.Find(m.ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	var subscriptions []entity.UserSubscription
	if err = cursor.All(m.ctx, &subscriptions); err != nil {
		return nil, err
	}
	return subscriptions, nil
}

// AddSubscription adds a new subscription
func (m *MongoDB) AddSubscription(subscription *entity.UserSubscription) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionSubscriptions)
	_, err = collection.InsertOne(m.ctx, subscription)
	return err
}

// DeleteSubscription deletes a subscription
func (m *MongoDB) DeleteSubscription(subscription *entity.UserSubscription) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	filter := bson.D{{Key: "user_id", Value: subscription.UserID}}
	collection := connection.Database(m.database).Collection(collectionSubscriptions)
	_, err = collection.DeleteOne(m.ctx, filter)
	return err
}
