package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/motion_logger/internal/config"
	"github.com/relabs-tech/motion_logger/internal/imu"
)

func main() {
	configPath := flag.String("config", "./motion_config.txt", "path to configuration file")
	flag.Parse()

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Get()
	if cfg.MQTTBroker == "" {
		log.Fatal("console: MQTT_BROKER not set in config")
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientID + "-console")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("MQTT connect error: %v", token.Error())
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	recToken := client.Subscribe(cfg.TopicRecord, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var r imu.Record
		if err := json.Unmarshal(msg.Payload(), &r); err != nil {
			log.Printf("console: record unmarshal error: %v", err)
			return
		}

		fmt.Printf(
			"[REC %6d]  ROLL=%6.2f PITCH=%6.2f YAW=%7.2f  a=(%+.3f %+.3f %+.3f)g  g=(%+7.2f %+7.2f %+7.2f)°/s  %.1f°C\n",
			r.Tick, r.Roll, r.Pitch, r.Yaw,
			r.Ax, r.Ay, r.Az, r.Gx, r.Gy, r.Gz, r.TempC,
		)
	})
	recToken.Wait()
	if recToken.Error() != nil {
		log.Fatalf("console: subscribe error: %v", recToken.Error())
	}
	log.Printf("console: subscribed to %s", cfg.TopicRecord)

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
}
