package client

import (
	"context"
	"staybook/pkg/kafka"
	"staybook/pkg/logger"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Client owns the long lived connections of a process. It is built once in
// main and handed to collaborators through the config.
type Client struct {
	Mongo    *mongo.Client
	Media    *cloudinary.Cloudinary
	Producer *kafka.Producer
}

func NewClient() *Client {
	return &Client{}
}

func (c *Client) SetMongo(log *logger.Logger, mongoURI string, mongoConnTimeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), mongoConnTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB", "error", err)
	}

	log.Info("Successfully connected to MongoDB")
	c.Mongo = client
}

func (c *Client) SetMedia(log *logger.Logger, cloudName, apiKey, apiSecret string) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		log.Fatal("Failed to initialize Cloudinary", "error", err)
	}

	log.Info("Cloudinary client configured", "cloud", cloudName)
	c.Media = cld
}

func (c *Client) SetProducer(producer *kafka.Producer) {
	c.Producer = producer
}

func (c *Client) GracefulShutdown(log *logger.Logger) {
	if c.Producer != nil {
		if err := c.Producer.Close(); err != nil {
			log.Error("Failed to close Kafka producer", "error", err)
		}
	}

	if c.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.Mongo.Disconnect(ctx); err != nil {
			log.Error("Failed to disconnect from MongoDB", "error", err)
			return
		}
		log.Info("Disconnected from MongoDB")
	}
}
